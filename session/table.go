package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hupe1980/vecflow/execution"
	"github.com/hupe1980/vecflow/physical"
)

// TableProvider is a source of data that can be scanned into a plan.
type TableProvider interface {
	// Schema is the full table schema.
	Schema() *arrow.Schema

	// Scan returns a plan reading the table. A nil projection reads all columns.
	Scan(projection []int) (physical.ExecutionPlan, error)
}

// StreamingTable is a table backed by partition streams.
type StreamingTable struct {
	schema     *arrow.Schema
	partitions []physical.PartitionStream
}

// NewStreamingTable creates a table over partitions, which must all have schema.
func NewStreamingTable(schema *arrow.Schema, partitions ...physical.PartitionStream) (*StreamingTable, error) {
	for i, p := range partitions {
		if !p.Schema().Equal(schema) {
			return nil, fmt.Errorf("%w: partition %d does not match the table schema", physical.ErrExecution, i)
		}
	}
	return &StreamingTable{schema: schema, partitions: partitions}, nil
}

func (t *StreamingTable) Schema() *arrow.Schema { return t.schema }

func (t *StreamingTable) Scan(projection []int) (physical.ExecutionPlan, error) {
	return physical.NewStreamingTableExec(t.schema, t.partitions, projection)
}

// MemTable is a re-readable table materialized in memory, with the part
// that did not fit in the memory pool spilled to disk.
type MemTable struct {
	schema      *arrow.Schema
	records     []arrow.Record
	spills      []*execution.SpillFile
	reservation *execution.MemoryReservation

	closeOnce sync.Once
}

func (t *MemTable) Schema() *arrow.Schema { return t.schema }

// NumSpillFiles returns how many spill files back the table.
func (t *MemTable) NumSpillFiles() int { return len(t.spills) }

// Scan returns a single-partition plan over the table. Each scan reads the
// table from the start.
func (t *MemTable) Scan(projection []int) (physical.ExecutionPlan, error) {
	return physical.NewStreamingTableExec(t.schema, []physical.PartitionStream{&memPartition{table: t}}, projection)
}

// Close releases the in-memory batches, returns their memory to the pool
// and removes the spill files.
func (t *MemTable) Close() error {
	var err error
	t.closeOnce.Do(func() {
		for _, rec := range t.records {
			rec.Release()
		}
		t.records = nil
		if t.reservation != nil {
			t.reservation.Free()
		}
		for _, f := range t.spills {
			if rerr := f.Remove(); rerr != nil && err == nil {
				err = rerr
			}
		}
	})
	return err
}

type memPartition struct {
	table *MemTable
}

func (p *memPartition) Schema() *arrow.Schema { return p.table.schema }

func (p *memPartition) Execute(*execution.TaskContext) (physical.RecordBatchStream, error) {
	return &memTableStream{table: p.table}, nil
}

type memTableStream struct {
	table  *MemTable
	next   int
	spill  int
	reader *execution.SpillReader
}

func (s *memTableStream) Schema() *arrow.Schema { return s.table.schema }

func (s *memTableStream) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next < len(s.table.records) {
		rec := s.table.records[s.next]
		s.next++
		rec.Retain()
		return rec, nil
	}

	for {
		if s.reader == nil {
			if s.spill >= len(s.table.spills) {
				return nil, io.EOF
			}
			r, err := s.table.spills[s.spill].NewReader(nil)
			if err != nil {
				return nil, err
			}
			s.reader = r
			s.spill++
		}

		rec, err := s.reader.Read(ctx)
		if err != io.EOF {
			return rec, err
		}
		if err := s.reader.Close(); err != nil {
			return nil, err
		}
		s.reader = nil
	}
}

func (s *memTableStream) Close() error {
	if s.reader != nil {
		err := s.reader.Close()
		s.reader = nil
		return err
	}
	return nil
}
