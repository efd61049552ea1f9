package model

// Optional carries the outcome of a best-effort stage: either a value or a
// degraded default with the reason it degraded. Callers never see an error.
type Optional[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Some wraps a successful value
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v}
}

// Degrade returns the zero value marked as degraded
func Degrade[T any](reason string) Optional[T] {
	return Optional[T]{Degraded: true, Reason: reason}
}

// Or returns the value, or fallback when degraded
func (o Optional[T]) Or(fallback T) T {
	if o.Degraded {
		return fallback
	}
	return o.Value
}
