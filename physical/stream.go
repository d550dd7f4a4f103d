package physical

import (
	"context"
	"io"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
)

// RecordBatchStream is a finite, pull-based sequence of batches sharing one schema.
type RecordBatchStream interface {
	// Schema returns the schema of every batch.
	Schema() *arrow.Schema

	// Read returns the next batch, or io.EOF when the stream is done.
	// The caller owns the returned batch and must Release it.
	Read(ctx context.Context) (arrow.Record, error)

	// Close releases the stream. It may be called before io.EOF.
	Close() error
}

type recordStream struct {
	schema  *arrow.Schema
	records []arrow.Record
}

// NewRecordStream returns a stream over records. The stream takes ownership
// of the records; those not read by the time of Close are released.
func NewRecordStream(schema *arrow.Schema, records ...arrow.Record) RecordBatchStream {
	return &recordStream{schema: schema, records: records}
}

func (s *recordStream) Schema() *arrow.Schema { return s.schema }

func (s *recordStream) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.records) == 0 {
		return nil, io.EOF
	}
	rec := s.records[0]
	s.records[0] = nil
	s.records = s.records[1:]
	return rec, nil
}

func (s *recordStream) Close() error {
	for _, rec := range s.records {
		rec.Release()
	}
	s.records = nil
	return nil
}

type errorStream struct {
	schema *arrow.Schema
	err    error
}

// NewErrorStream returns a stream whose every Read fails with err.
func NewErrorStream(schema *arrow.Schema, err error) RecordBatchStream {
	return &errorStream{schema: schema, err: err}
}

func (s *errorStream) Schema() *arrow.Schema                      { return s.schema }
func (s *errorStream) Read(context.Context) (arrow.Record, error) { return nil, s.err }
func (s *errorStream) Close() error                               { return nil }

type finallyStream struct {
	RecordBatchStream
	once sync.Once
	fn   func()
}

// Finally wraps s so that fn runs exactly once, when s returns io.EOF or
// when the wrapper is closed, whichever happens first.
func Finally(s RecordBatchStream, fn func()) RecordBatchStream {
	return &finallyStream{RecordBatchStream: s, fn: fn}
}

func (s *finallyStream) Read(ctx context.Context) (arrow.Record, error) {
	rec, err := s.RecordBatchStream.Read(ctx)
	if err == io.EOF {
		s.once.Do(s.fn)
	}
	return rec, err
}

func (s *finallyStream) Close() error {
	err := s.RecordBatchStream.Close()
	s.once.Do(s.fn)
	return err
}

// Drain reads s to the end, releasing every batch, and closes it. It
// returns the number of rows read.
func Drain(ctx context.Context, s RecordBatchStream) (int64, error) {
	defer s.Close()

	var rows int64
	for {
		rec, err := s.Read(ctx)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows += rec.NumRows()
		rec.Release()
	}
}
