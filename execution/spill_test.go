package execution

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecord(t *testing.T, mem memory.Allocator, start, n int64) arrow.Record {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "score", Type: arrow.PrimitiveTypes.Float32},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i := start; i < start+n; i++ {
		b.Field(0).(*array.Int64Builder).Append(i)
		b.Field(1).(*array.Float32Builder).Append(float32(i) / 2)
	}
	return b.NewRecord()
}

func TestSpillRoundTrip(t *testing.T) {
	for _, codec := range []SpillCodec{SpillCodecZstd, SpillCodecLZ4, SpillCodecNone} {
		t.Run(codec.String(), func(t *testing.T) {
			mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
			defer mem.AssertSize(t, 0)

			dm, err := NewDiskManager(DiskManagerConfig{
				Mode:        DiskManagerDirectories,
				Directories: []string{t.TempDir()},
				Codec:       codec,
			}, nil)
			require.NoError(t, err)
			defer dm.Close()

			f, err := dm.CreateSpillFile("collect/partition 0")
			require.NoError(t, err)
			assert.NotContains(t, f.Path()[len(dm.SpillDirs()[0]):], " ")

			r1 := makeRecord(t, mem, 0, 100)
			r2 := makeRecord(t, mem, 100, 50)

			w, err := f.NewWriter(context.Background(), r1.Schema())
			require.NoError(t, err)
			require.NoError(t, w.Write(r1))
			require.NoError(t, w.Write(r2))
			require.NoError(t, w.Close())
			require.NoError(t, w.Close())
			r1.Release()
			r2.Release()

			assert.Equal(t, int64(150), f.NumRows())
			assert.Positive(t, f.SizeBytes())

			rd, err := f.NewReader(mem)
			require.NoError(t, err)
			assert.Equal(t, "id", rd.Schema().Field(0).Name)

			var ids []int64
			for {
				rec, err := rd.Read(context.Background())
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				ids = append(ids, rec.Column(0).(*array.Int64).Int64Values()...)
				rec.Release()
			}
			require.NoError(t, rd.Close())

			require.Len(t, ids, 150)
			for i, id := range ids {
				assert.Equal(t, int64(i), id)
			}

			require.NoError(t, f.Remove())
			_, err = os.Stat(f.Path())
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestDiskManager_Disabled(t *testing.T) {
	dm, err := NewDiskManager(DiskManagerConfig{Mode: DiskManagerDisabled}, nil)
	require.NoError(t, err)

	assert.False(t, dm.Enabled())
	_, err = dm.CreateSpillFile("x")
	assert.ErrorIs(t, err, ErrSpillDisabled)
}

func TestDiskManager_LazyDirsAndClose(t *testing.T) {
	root := t.TempDir()
	dm, err := NewDiskManager(DiskManagerConfig{Mode: DiskManagerDirectories, Directories: []string{root}}, nil)
	require.NoError(t, err)

	assert.Empty(t, dm.SpillDirs())

	_, err = dm.CreateSpillFile("a")
	require.NoError(t, err)
	_, err = dm.CreateSpillFile("b")
	require.NoError(t, err)

	dirs := dm.SpillDirs()
	require.Len(t, dirs, 1)

	require.NoError(t, dm.Close())
	_, err = os.Stat(dirs[0])
	assert.True(t, os.IsNotExist(err))
}

func TestDiskManager_NoDirectories(t *testing.T) {
	_, err := NewDiskManager(DiskManagerConfig{Mode: DiskManagerDirectories}, nil)
	assert.Error(t, err)
}

func TestRuntimeEnvBuilder(t *testing.T) {
	rt, err := NewRuntimeEnvBuilder().Build()
	require.NoError(t, err)
	assert.False(t, rt.SpillEnabled())
	assert.IsType(t, &UnboundedMemoryPool{}, rt.MemoryPool)

	rt, err = NewRuntimeEnvBuilder().
		WithMemoryPool(NewFairSpillPool(1024)).
		WithDiskManager(NewDiskManagerConfig()).
		Build()
	require.NoError(t, err)
	assert.True(t, rt.SpillEnabled())
	assert.Equal(t, DiskManagerOSTemp, rt.DiskManager.Mode())
	assert.Equal(t, int64(1024), rt.MemoryPool.Limit())

	assert.Same(t, DefaultRuntimeEnv(), DefaultRuntimeEnv())
}
