package dataset

import "math"

// DefaultEpsilon is the tolerance used by DataSet.Equal.
const DefaultEpsilon = 1e-5

// Array is a dense float32 array with a shape. The payload is opaque to
// iterkit; only copying and comparison are needed.
type Array struct {
	Shape []int
	Data  []float32
}

// NewArray allocates a zeroed array of the given shape.
func NewArray(shape ...int) *Array {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Array{Shape: append([]int(nil), shape...), Data: make([]float32, n)}
}

// Filled allocates an array of the given shape with every element set to v.
func Filled(v float32, shape ...int) *Array {
	a := NewArray(shape...)
	for i := range a.Data {
		a.Data[i] = v
	}
	return a
}

// Copy returns a deep copy. Copying a nil array yields nil.
func (a *Array) Copy() *Array {
	if a == nil {
		return nil
	}
	return &Array{
		Shape: append([]int(nil), a.Shape...),
		Data:  append([]float32(nil), a.Data...),
	}
}

// EqualWithEps reports whether both arrays have the same shape and every
// element differs by at most eps. Two nil arrays are equal.
func (a *Array) EqualWithEps(b *Array, eps float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a.Shape) != len(b.Shape) || len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	for i := range a.Data {
		if math.Abs(float64(a.Data[i])-float64(b.Data[i])) > eps {
			return false
		}
	}
	return true
}

// Mean returns the arithmetic mean of the elements, 0 for an empty array.
func (a *Array) Mean() float64 {
	if a == nil || len(a.Data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range a.Data {
		sum += float64(v)
	}
	return sum / float64(len(a.Data))
}

// DataSet is one batch: features and labels with optional masks.
type DataSet struct {
	Features     *Array
	Labels       *Array
	FeaturesMask *Array
	LabelsMask   *Array
}

// NumExamples returns the leading dimension of the features.
func (d *DataSet) NumExamples() int {
	if d == nil || d.Features == nil || len(d.Features.Shape) == 0 {
		return 0
	}
	return d.Features.Shape[0]
}

// Copy returns a deep copy detached from the receiver's buffers.
func (d *DataSet) Copy() *DataSet {
	if d == nil {
		return nil
	}
	return &DataSet{
		Features:     d.Features.Copy(),
		Labels:       d.Labels.Copy(),
		FeaturesMask: d.FeaturesMask.Copy(),
		LabelsMask:   d.LabelsMask.Copy(),
	}
}

// Equal compares features and labels within DefaultEpsilon. Masks are not
// compared: they describe padding, not content.
func (d *DataSet) Equal(other *DataSet) bool {
	if d == nil || other == nil {
		return d == nil && other == nil
	}
	return d.Features.EqualWithEps(other.Features, DefaultEpsilon) &&
		d.Labels.EqualWithEps(other.Labels, DefaultEpsilon)
}
