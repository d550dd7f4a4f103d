package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/util"

	"github.com/hupe1980/vecflow/execution"
	"github.com/hupe1980/vecflow/physical"
)

// ErrColumnNotFound is returned by Select for an unknown column name.
var ErrColumnNotFound = errors.New("column not found")

// DataFrame is a lazily evaluated scan of a table, optionally projected.
type DataFrame struct {
	session    *SessionContext
	provider   TableProvider
	projection []int
}

// Provider returns the table the DataFrame reads.
func (df *DataFrame) Provider() TableProvider { return df.provider }

// Schema returns the output schema.
func (df *DataFrame) Schema() *arrow.Schema {
	schema := df.provider.Schema()
	if df.projection == nil {
		return schema
	}
	fields := make([]arrow.Field, len(df.projection))
	for i, idx := range df.projection {
		fields[i] = schema.Field(idx)
	}
	return arrow.NewSchema(fields, nil)
}

// Plan returns the physical plan of the DataFrame.
func (df *DataFrame) Plan() (physical.ExecutionPlan, error) {
	return df.provider.Scan(df.projection)
}

// Select returns a DataFrame reading only the named columns, in the given order.
func (df *DataFrame) Select(columns ...string) (*DataFrame, error) {
	schema := df.Schema()

	projection := make([]int, len(columns))
	for i, name := range columns {
		indices := schema.FieldIndices(name)
		if len(indices) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
		}
		idx := indices[0]
		if df.projection != nil {
			idx = df.projection[idx]
		}
		projection[i] = idx
	}

	return &DataFrame{session: df.session, provider: df.provider, projection: projection}, nil
}

// ExecuteStream executes the plan and returns its partitions as one stream,
// read in partition order.
func (df *DataFrame) ExecuteStream() (physical.RecordBatchStream, error) {
	plan, err := df.Plan()
	if err != nil {
		return nil, err
	}

	task := df.session.TaskContext()
	if plan.Properties().Partitions == 1 {
		return plan.Execute(0, task)
	}
	return &concatStream{plan: plan, task: task}, nil
}

// Collect executes the DataFrame and returns all batches. The batches are
// accounted against the session memory pool while collecting, so Collect
// fails with execution.ErrResourcesExhausted when they do not fit.
func (df *DataFrame) Collect(ctx context.Context) ([]arrow.Record, error) {
	stream, err := df.ExecuteStream()
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	reservation := execution.NewMemoryConsumer("DataFrame.Collect").Register(df.session.runtime.MemoryPool)
	defer reservation.Free()

	var records []arrow.Record
	release := func() {
		for _, rec := range records {
			rec.Release()
		}
	}

	for {
		rec, err := stream.Read(ctx)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			release()
			return nil, err
		}
		if err := reservation.TryGrow(util.TotalRecordSize(rec)); err != nil {
			rec.Release()
			release()
			return nil, err
		}
		records = append(records, rec)
	}
}

// Count executes the DataFrame and returns the number of rows.
func (df *DataFrame) Count(ctx context.Context) (int64, error) {
	stream, err := df.ExecuteStream()
	if err != nil {
		return 0, err
	}
	return physical.Drain(ctx, stream)
}

// Cache executes the DataFrame once and returns a DataFrame over the
// materialized result, backed by a MemTable. Batches that do not fit in the
// session memory pool are spilled to disk when the session can spill.
// Close the MemTable (via Provider) to release the cached data.
func (df *DataFrame) Cache(ctx context.Context) (*DataFrame, error) {
	stream, err := df.ExecuteStream()
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	rt := df.session.runtime
	consumer := execution.NewMemoryConsumer("DataFrame.Cache").WithCanSpill(rt.SpillEnabled())

	table := &MemTable{
		schema:      stream.Schema(),
		reservation: consumer.Register(rt.MemoryPool),
	}

	var writer *execution.SpillWriter
	fail := func(err error) (*DataFrame, error) {
		if writer != nil {
			_ = writer.Close()
		}
		_ = table.Close()
		return nil, err
	}

	for {
		rec, err := stream.Read(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(err)
		}

		// Once spilling started, later batches follow to keep the row order.
		if writer == nil {
			growErr := table.reservation.TryGrow(util.TotalRecordSize(rec))
			if growErr == nil {
				table.records = append(table.records, rec)
				continue
			}
			if !rt.SpillEnabled() {
				rec.Release()
				return fail(growErr)
			}

			file, err := rt.DiskManager.CreateSpillFile("DataFrame.Cache")
			if err != nil {
				rec.Release()
				return fail(err)
			}
			table.spills = append(table.spills, file)

			writer, err = file.NewWriter(ctx, table.schema)
			if err != nil {
				rec.Release()
				return fail(err)
			}
			df.session.logger.Debug("Spilling cached batches",
				"session_id", df.session.id, "path", file.Path(), "reserved", table.reservation.Size())
		}

		err = writer.Write(rec)
		rec.Release()
		if err != nil {
			return fail(err)
		}
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			writer = nil
			return fail(err)
		}
	}

	return df.session.ReadTable(table), nil
}

type concatStream struct {
	plan    physical.ExecutionPlan
	task    *execution.TaskContext
	next    int
	current physical.RecordBatchStream
}

func (s *concatStream) Schema() *arrow.Schema { return s.plan.Schema() }

func (s *concatStream) Read(ctx context.Context) (arrow.Record, error) {
	for {
		if s.current == nil {
			if s.next >= s.plan.Properties().Partitions {
				return nil, io.EOF
			}
			stream, err := s.plan.Execute(s.next, s.task)
			if err != nil {
				return nil, err
			}
			s.current = stream
			s.next++
		}

		rec, err := s.current.Read(ctx)
		if err != io.EOF {
			return rec, err
		}
		if err := s.current.Close(); err != nil {
			return nil, err
		}
		s.current = nil
	}
}

func (s *concatStream) Close() error {
	s.next = s.plan.Properties().Partitions
	if s.current != nil {
		err := s.current.Close()
		s.current = nil
		return err
	}
	return nil
}
