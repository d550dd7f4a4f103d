package physical_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecflow/physical"
	"github.com/hupe1980/vecflow/testutil"
)

func TestStreamingTableExec_Projection(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := testutil.PairRecord(mem, []int64{1, 2}, []string{"x", "y"})
	part := physical.NewOneShotPartitionStream(physical.NewRecordStream(rec.Schema(), rec))

	exec, err := physical.NewStreamingTableExec(rec.Schema(), []physical.PartitionStream{part}, []int{1, 0})
	require.NoError(t, err)

	assert.Equal(t, "name", exec.Schema().Field(0).Name)
	assert.Equal(t, "StreamingTableExec: partition_sizes=1, projection=[name,id]", physical.Describe(exec, physical.DisplayVerbose))

	stream, err := exec.Execute(0, newTask())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, testutil.CollectInt64(t, stream, 1))
	require.NoError(t, stream.Close())

	rows, _ := exec.Metrics().OutputRows()
	assert.Equal(t, 2, rows)

	_, err = exec.Execute(0, newTask())
	assert.ErrorIs(t, err, physical.ErrExhausted)
	assert.True(t, part.Exhausted())
}

func TestStreamingTableExec_Validation(t *testing.T) {
	rec := testutil.Int64Record(memory.DefaultAllocator, "id", 1)
	part := physical.NewOneShotPartitionStream(physical.NewRecordStream(rec.Schema(), rec))
	defer func() {
		if s, err := part.Execute(nil); err == nil {
			s.Close()
		}
	}()

	_, err := physical.NewStreamingTableExec(rec.Schema(), []physical.PartitionStream{part}, []int{3})
	assert.ErrorIs(t, err, physical.ErrExecution)

	other := testutil.PairRecord(memory.DefaultAllocator, nil, nil)
	defer other.Release()
	_, err = physical.NewStreamingTableExec(other.Schema(), []physical.PartitionStream{part}, nil)
	assert.ErrorIs(t, err, physical.ErrExecution)

	exec, err := physical.NewStreamingTableExec(rec.Schema(), []physical.PartitionStream{part}, nil)
	require.NoError(t, err)
	_, err = exec.Execute(2, newTask())
	assert.ErrorIs(t, err, physical.ErrExecution)
}
