package execution

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/vecflow/internal/fs"
	"github.com/hupe1980/vecflow/internal/resource"
)

// SpillCodec is the compression applied to spill files.
type SpillCodec int

const (
	SpillCodecZstd SpillCodec = iota
	SpillCodecLZ4
	SpillCodecNone
)

// String returns the codec name.
func (c SpillCodec) String() string {
	switch c {
	case SpillCodecZstd:
		return "zstd"
	case SpillCodecLZ4:
		return "lz4"
	case SpillCodecNone:
		return "none"
	default:
		return "unknown"
	}
}

// SpillFile is one file of spilled batches.
type SpillFile struct {
	path  string
	codec SpillCodec
	fs    fs.FileSystem
	io    *resource.Controller

	rows  atomic.Int64
	bytes atomic.Int64
}

// Path returns the file path.
func (f *SpillFile) Path() string { return f.path }

// NumRows returns the number of rows written so far.
func (f *SpillFile) NumRows() int64 { return f.rows.Load() }

// SizeBytes returns the number of bytes written to disk so far.
func (f *SpillFile) SizeBytes() int64 { return f.bytes.Load() }

// Remove deletes the file.
func (f *SpillFile) Remove() error {
	if err := f.fs.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// NewWriter opens the file for writing batches of schema. The file is
// truncated. ctx bounds waiting on the IO limiter.
func (f *SpillFile) NewWriter(ctx context.Context, schema *arrow.Schema) (*SpillWriter, error) {
	file, err := f.fs.OpenFile(f.path, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open spill file: %w", err)
	}

	buf := bufio.NewWriter(&countingWriter{w: file, n: &f.bytes})
	var sink io.Writer = resource.NewRateLimitedWriter(ctx, buf, f.io)

	var comp io.WriteCloser
	switch f.codec {
	case SpillCodecZstd:
		enc, err := zstd.NewWriter(sink)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		comp = enc
	case SpillCodecLZ4:
		comp = lz4.NewWriter(sink)
	case SpillCodecNone:
	default:
		_ = file.Close()
		return nil, fmt.Errorf("unknown spill codec %d", f.codec)
	}
	if comp != nil {
		sink = comp
	}

	f.rows.Store(0)
	return &SpillWriter{
		spill: f,
		file:  file,
		buf:   buf,
		comp:  comp,
		w:     ipc.NewWriter(sink, ipc.WithSchema(schema)),
	}, nil
}

// NewReader opens the file for reading. A nil allocator uses memory.DefaultAllocator.
func (f *SpillFile) NewReader(mem memory.Allocator) (*SpillReader, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	file, err := f.fs.OpenFile(f.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open spill file: %w", err)
	}

	var src io.ReadCloser
	switch f.codec {
	case SpillCodecZstd:
		dec, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		src = dec.IOReadCloser()
	case SpillCodecLZ4:
		src = io.NopCloser(lz4.NewReader(file))
	default:
		src = io.NopCloser(bufio.NewReader(file))
	}

	rdr, err := ipc.NewReader(src, ipc.WithAllocator(mem))
	if err != nil {
		_ = src.Close()
		_ = file.Close()
		return nil, fmt.Errorf("read spill file: %w", err)
	}

	return &SpillReader{file: file, src: src, rdr: rdr}, nil
}

// SpillWriter appends batches to a spill file.
type SpillWriter struct {
	spill *SpillFile
	file  fs.File
	buf   *bufio.Writer
	comp  io.WriteCloser
	w     *ipc.Writer

	closed bool
}

// Write appends rec. The caller keeps ownership of rec.
func (w *SpillWriter) Write(rec arrow.Record) error {
	if err := w.w.Write(rec); err != nil {
		return fmt.Errorf("spill write: %w", err)
	}
	w.spill.rows.Add(rec.NumRows())
	return nil
}

// Close flushes and closes the file.
func (w *SpillWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	errs = append(errs, w.w.Close())
	if w.comp != nil {
		errs = append(errs, w.comp.Close())
	}
	errs = append(errs, w.buf.Flush(), w.file.Close())
	return errors.Join(errs...)
}

// SpillReader streams the batches of a spill file back.
type SpillReader struct {
	file fs.File
	src  io.ReadCloser
	rdr  *ipc.Reader

	closed bool
}

// Schema returns the schema of the spilled batches.
func (r *SpillReader) Schema() *arrow.Schema { return r.rdr.Schema() }

// Read returns the next batch or io.EOF. The caller must Release the batch.
func (r *SpillReader) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.closed {
		return nil, io.EOF
	}
	if !r.rdr.Next() {
		if err := r.rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("spill read: %w", err)
		}
		return nil, io.EOF
	}
	rec := r.rdr.Record()
	rec.Retain()
	return rec, nil
}

// Close releases the reader and closes the file.
func (r *SpillReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.rdr.Release()
	return errors.Join(r.src.Close(), r.file.Close())
}

type countingWriter struct {
	w io.Writer
	n *atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}
