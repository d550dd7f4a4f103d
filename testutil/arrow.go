package testutil

import (
	"context"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
)

// Int64Record builds a single-column int64 record.
func Int64Record(mem memory.Allocator, name string, values ...int64) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{{Name: name, Type: arrow.PrimitiveTypes.Int64}}, nil)

	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(values, nil)

	col := b.NewArray()
	defer col.Release()

	return array.NewRecord(schema, []arrow.Array{col}, int64(len(values)))
}

// PairRecord builds an (id int64, name utf8) record.
func PairRecord(mem memory.Allocator, ids []int64, names []string) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	b.Field(0).(*array.Int64Builder).AppendValues(ids, nil)
	b.Field(1).(*array.StringBuilder).AppendValues(names, nil)
	return b.NewRecord()
}

// VectorArray builds a fixed-size-list<float32> column from equally sized vectors.
func VectorArray(mem memory.Allocator, vectors [][]float32) *array.FixedSizeList {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	b := array.NewFixedSizeListBuilder(mem, int32(dim), arrow.PrimitiveTypes.Float32)
	defer b.Release()

	values := b.ValueBuilder().(*array.Float32Builder)
	for _, v := range vectors {
		b.Append(true)
		values.AppendValues(v, nil)
	}
	return b.NewArray().(*array.FixedSizeList)
}

// CollectInt64 drains s and returns column col of every batch as int64s.
func CollectInt64(t testing.TB, s interface {
	Read(context.Context) (arrow.Record, error)
}, col int) []int64 {
	t.Helper()

	var out []int64
	for {
		rec, err := s.Read(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec.Column(col).(*array.Int64).Int64Values()...)
		rec.Release()
	}
}
