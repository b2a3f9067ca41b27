package utils

func Ptr[T any](v T) *T {
	return &v
}

// OrZero dereferences v, or returns the zero value for nil.
func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
