package quantization

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecflow/testutil"
)

func matrix(n, dim int) [][]float32 {
	flat := testutil.Sequential(n * dim)
	out := make([][]float32, n)
	for i := range out {
		out[i] = flat[i*dim : (i+1)*dim]
	}
	return out
}

func TestDivideFixedSizeList(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	fsl := testutil.VectorArray(mem, matrix(10, 32))
	defer fsl.Release()

	subs, err := DivideFixedSizeList(mem, fsl, 4)
	require.NoError(t, err)
	require.Len(t, subs, 4)
	defer func() {
		for _, s := range subs {
			s.Release()
		}
	}()

	want, err := DivideToSubvectors(testutil.Sequential(320), 32, 4)
	require.NoError(t, err)
	for j, s := range subs {
		assert.Equal(t, want[j], s.(*array.Float32).Float32Values())
	}
}

func TestDivideFixedSizeList_Slice(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	fsl := testutil.VectorArray(mem, matrix(5, 4))
	defer fsl.Release()

	sliced := array.NewSlice(fsl, 2, 4).(*array.FixedSizeList)
	defer sliced.Release()

	subs, err := DivideFixedSizeList(mem, sliced, 2)
	require.NoError(t, err)
	defer func() {
		for _, s := range subs {
			s.Release()
		}
	}()

	assert.Equal(t, []float32{8, 9, 12, 13}, subs[0].(*array.Float32).Float32Values())
	assert.Equal(t, []float32{10, 11, 14, 15}, subs[1].(*array.Float32).Float32Values())
}

func TestDivideFixedSizeList_Float64(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := array.NewFixedSizeListBuilder(mem, 2, arrow.PrimitiveTypes.Float64)
	defer b.Release()
	values := b.ValueBuilder().(*array.Float64Builder)
	b.Append(true)
	values.AppendValues([]float64{1, 2}, nil)
	b.Append(true)
	values.AppendValues([]float64{3, 4}, nil)

	fsl := b.NewArray().(*array.FixedSizeList)
	defer fsl.Release()

	subs, err := DivideFixedSizeList(mem, fsl, 2)
	require.NoError(t, err)
	defer func() {
		for _, s := range subs {
			s.Release()
		}
	}()

	assert.Equal(t, []float64{1, 3}, subs[0].(*array.Float64).Float64Values())
	assert.Equal(t, []float64{2, 4}, subs[1].(*array.Float64).Float64Values())
}

func TestDivideFixedSizeList_Invalid(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	fsl := testutil.VectorArray(mem, matrix(2, 6))
	defer fsl.Release()

	_, err := DivideFixedSizeList(mem, fsl, 4)
	var countErr *InvalidSubvectorCountError
	require.ErrorAs(t, err, &countErr)
	assert.Equal(t, 6, countErr.Dimension)

	b := array.NewFixedSizeListBuilder(mem, 2, arrow.PrimitiveTypes.Int32)
	defer b.Release()
	b.Append(true)
	b.ValueBuilder().(*array.Int32Builder).AppendValues([]int32{1, 2}, nil)
	ints := b.NewArray().(*array.FixedSizeList)
	defer ints.Release()

	_, err = DivideFixedSizeList(mem, ints, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
