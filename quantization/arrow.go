package quantization

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DivideFixedSizeList splits a fixed-size-list vector column into m flat
// primitive arrays, as DivideToSubvectors does for slices. The element
// type must be float16, float32 or float64. Null vectors are read as their
// underlying values. The caller must Release the returned arrays.
func DivideFixedSizeList(mem memory.Allocator, fsl *array.FixedSizeList, m int) ([]arrow.Array, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	typ := fsl.DataType().(*arrow.FixedSizeListType)
	dim := int(typ.Len())
	lo := fsl.Offset() * dim
	hi := lo + fsl.Len()*dim

	switch values := fsl.ListValues().(type) {
	case *array.Float16:
		return divideInto(values.Values()[lo:hi], dim, m, func(sub []float16.Num) arrow.Array {
			b := array.NewFloat16Builder(mem)
			defer b.Release()
			b.AppendValues(sub, nil)
			return b.NewArray()
		})
	case *array.Float32:
		return divideInto(values.Float32Values()[lo:hi], dim, m, func(sub []float32) arrow.Array {
			b := array.NewFloat32Builder(mem)
			defer b.Release()
			b.AppendValues(sub, nil)
			return b.NewArray()
		})
	case *array.Float64:
		return divideInto(values.Float64Values()[lo:hi], dim, m, func(sub []float64) arrow.Array {
			b := array.NewFloat64Builder(mem)
			defer b.Release()
			b.AppendValues(sub, nil)
			return b.NewArray()
		})
	default:
		return nil, fmt.Errorf("%w: unsupported vector element type %s", ErrInvalidInput, typ.Elem())
	}
}

func divideInto[T Element](values []T, dim, m int, build func([]T) arrow.Array) ([]arrow.Array, error) {
	subs, err := DivideToSubvectors(values, dim, m)
	if err != nil {
		return nil, err
	}

	out := make([]arrow.Array, len(subs))
	for j, sub := range subs {
		out[j] = build(sub)
	}
	return out, nil
}
