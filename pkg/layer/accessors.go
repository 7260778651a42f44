package layer

// Accessor yields one attribute per data point: either a constant or a
// function of the point.
type Accessor[T any] struct {
	Value T
	Fn    func(DataPoint) T
}

// Constant returns an accessor that ignores its input.
func Constant[T any](v T) Accessor[T] {
	return Accessor[T]{Value: v}
}

// PerRow returns an accessor that evaluates fn for every point.
func PerRow[T any](fn func(DataPoint) T) Accessor[T] {
	return Accessor[T]{Fn: fn}
}

// IsConstant reports whether the accessor returns the same value everywhere.
func (a Accessor[T]) IsConstant() bool {
	return a.Fn == nil
}

// At evaluates the accessor.
func (a Accessor[T]) At(d DataPoint) T {
	if a.Fn == nil {
		return a.Value
	}
	return a.Fn(d)
}
