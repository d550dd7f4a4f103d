package session_test

import (
	"context"
	"os"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecflow/execution"
	"github.com/hupe1980/vecflow/physical"
	"github.com/hupe1980/vecflow/session"
	"github.com/hupe1980/vecflow/testutil"
)

func pairStream(mem memory.Allocator) physical.RecordBatchStream {
	r1 := testutil.PairRecord(mem, []int64{1, 2}, []string{"a", "b"})
	r2 := testutil.PairRecord(mem, []int64{3}, []string{"c"})
	return physical.NewRecordStream(r1.Schema(), r1, r2)
}

func newSession(t *testing.T, pool execution.MemoryPool, spill bool) *session.SessionContext {
	t.Helper()

	b := execution.NewRuntimeEnvBuilder().WithMemoryPool(pool)
	if spill {
		b = b.WithDiskManager(execution.DiskManagerConfig{
			Mode:        execution.DiskManagerDirectories,
			Directories: []string{t.TempDir()},
			Codec:       execution.SpillCodecLZ4,
		})
	}
	rt, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rt.DiskManager.Close()) })

	return session.NewSessionContextWithConfig(execution.NewSessionConfig(), rt, nil)
}

func TestReadOneShot(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s := session.NewSessionContext(nil)
	df, err := s.ReadOneShot(pairStream(mem))
	require.NoError(t, err)

	assert.Equal(t, "id", df.Schema().Field(0).Name)

	n, err := df.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = df.Count(context.Background())
	assert.ErrorIs(t, err, physical.ErrExhausted)
}

func TestReadOneShot_SeparateSlots(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s := session.NewSessionContext(nil)
	df1, err := s.ReadOneShot(pairStream(mem))
	require.NoError(t, err)
	df2, err := s.ReadOneShot(pairStream(mem))
	require.NoError(t, err)

	_, err = df1.Count(context.Background())
	require.NoError(t, err)

	n, err := df2.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDataFrame_Select(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s := session.NewSessionContext(nil)
	df, err := s.ReadOneShot(pairStream(mem))
	require.NoError(t, err)

	_, err = df.Select("missing")
	assert.ErrorIs(t, err, session.ErrColumnNotFound)

	swapped, err := df.Select("name", "id")
	require.NoError(t, err)
	assert.Equal(t, "name", swapped.Schema().Field(0).Name)

	ids, err := swapped.Select("id")
	require.NoError(t, err)
	require.Equal(t, 1, ids.Schema().NumFields())

	plan, err := ids.Plan()
	require.NoError(t, err)
	assert.Equal(t, "StreamingTableExec: partition_sizes=1, projection=[id]\n", physical.Indent(plan, false))

	stream, err := ids.ExecuteStream()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, testutil.CollectInt64(t, stream, 0))
	require.NoError(t, stream.Close())
}

func TestDataFrame_ConcatenatesPartitions(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	p1 := testutil.Int64Record(mem, "v", 1, 2)
	p2 := testutil.Int64Record(mem, "v", 3)
	schema := p1.Schema()

	table, err := session.NewStreamingTable(schema,
		physical.NewOneShotPartitionStream(physical.NewRecordStream(schema, p1)),
		physical.NewOneShotPartitionStream(physical.NewRecordStream(schema, p2)),
	)
	require.NoError(t, err)

	s := session.NewSessionContext(nil)
	require.NoError(t, s.RegisterTable("t", table))
	assert.ErrorIs(t, s.RegisterTable("t", table), session.ErrTableExists)

	df, err := s.Table("t")
	require.NoError(t, err)

	stream, err := df.ExecuteStream()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, testutil.CollectInt64(t, stream, 0))
	require.NoError(t, stream.Close())

	_, ok := s.DeregisterTable("t")
	assert.True(t, ok)
	_, err = s.Table("t")
	assert.ErrorIs(t, err, session.ErrTableNotFound)
}

func TestNewStreamingTable_SchemaMismatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := testutil.Int64Record(mem, "v", 1)
	other := arrow.NewSchema([]arrow.Field{{Name: "w", Type: arrow.PrimitiveTypes.Int64}}, nil)

	part := physical.NewOneShotPartitionStream(physical.NewRecordStream(rec.Schema(), rec))
	_, err := session.NewStreamingTable(other, part)
	assert.ErrorIs(t, err, physical.ErrExecution)

	stream, err := part.Execute(nil)
	require.NoError(t, err)
	require.NoError(t, stream.Close())
}

func TestDataFrame_Collect(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	t.Run("fits", func(t *testing.T) {
		pool := execution.NewUnboundedMemoryPool()
		s := newSession(t, pool, false)
		df, err := s.ReadOneShot(pairStream(mem))
		require.NoError(t, err)

		records, err := df.Collect(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, rec := range records {
			rec.Release()
		}
		assert.Equal(t, int64(0), pool.Reserved())
	})

	t.Run("exceeds pool", func(t *testing.T) {
		s := newSession(t, execution.NewGreedyMemoryPool(1), false)
		df, err := s.ReadOneShot(pairStream(mem))
		require.NoError(t, err)

		_, err = df.Collect(context.Background())
		assert.ErrorIs(t, err, execution.ErrResourcesExhausted)
	})
}

func TestDataFrame_CacheInMemory(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	pool := execution.NewUnboundedMemoryPool()
	s := newSession(t, pool, false)
	df, err := s.ReadOneShot(pairStream(mem))
	require.NoError(t, err)

	cached, err := df.Cache(context.Background())
	require.NoError(t, err)

	table, ok := cached.Provider().(*session.MemTable)
	require.True(t, ok)
	assert.Equal(t, 0, table.NumSpillFiles())
	assert.Positive(t, pool.Reserved())

	for range 2 {
		stream, err := cached.ExecuteStream()
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, testutil.CollectInt64(t, stream, 0))
		require.NoError(t, stream.Close())
	}

	require.NoError(t, table.Close())
	assert.Equal(t, int64(0), pool.Reserved())
}

func TestDataFrame_CacheSpills(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s := newSession(t, execution.NewGreedyMemoryPool(1), true)
	df, err := s.ReadOneShot(pairStream(mem))
	require.NoError(t, err)

	cached, err := df.Cache(context.Background())
	require.NoError(t, err)

	table := cached.Provider().(*session.MemTable)
	assert.Equal(t, 1, table.NumSpillFiles())

	names, err := cached.Select("id")
	require.NoError(t, err)
	for range 2 {
		n, err := names.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	}

	stream, err := cached.ExecuteStream()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, testutil.CollectInt64(t, stream, 0))
	require.NoError(t, stream.Close())

	dirs := s.Runtime().DiskManager.SpillDirs()
	require.Len(t, dirs, 1)
	require.NoError(t, table.Close())

	entries, err := os.ReadDir(dirs[0])
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDataFrame_CacheWithoutSpilling(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	s := newSession(t, execution.NewGreedyMemoryPool(1), false)
	df, err := s.ReadOneShot(pairStream(mem))
	require.NoError(t, err)

	_, err = df.Cache(context.Background())
	assert.ErrorIs(t, err, execution.ErrResourcesExhausted)
}
