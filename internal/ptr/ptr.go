package ptr

func V[T any](v T) *T {
	return &v
}

// Or returns the value behind p, or def when p is nil.
func Or[T any](p *T, def T) T {
	if p == nil {
		return def
	}

	return *p
}
