package ptr

// New returns a pointer to a copy of v.
func New[T any](v T) *T { return &v }

// Value dereferences p, yielding the zero value for nil. Optional query
// parameters bound as pointers collapse to their defaults with it.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
