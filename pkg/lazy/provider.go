// Package lazy provides deferred values that are computed when read rather
// than when configured.
package lazy

import "sync"

// Provider is a value that is computed on Get.
type Provider[T any] interface {
	Get() (T, error)
}

// Func adapts a plain function to a Provider.
type Func[T any] func() (T, error)

func (f Func[T]) Get() (T, error) { return f() }

type constant[T any] struct {
	value T
}

func (c constant[T]) Get() (T, error) { return c.value, nil }

// Of returns a provider that always yields v.
func Of[T any](v T) Provider[T] {
	return constant[T]{value: v}
}

// Missing returns a provider that fails with a *MissingValueError for name.
func Missing[T any](name string) Provider[T] {
	return Func[T](func() (T, error) {
		var zero T
		return zero, &MissingValueError{Name: name}
	})
}

// Map defers fn until p is read.
func Map[T, U any](p Provider[T], fn func(T) U) Provider[U] {
	return Func[U](func() (U, error) {
		v, err := p.Get()
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v), nil
	})
}

// MapErr is Map for functions that can fail.
func MapErr[T, U any](p Provider[T], fn func(T) (U, error)) Provider[U] {
	return Func[U](func() (U, error) {
		v, err := p.Get()
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	})
}

// Zip combines two providers. Both are read, left first.
func Zip[A, B, R any](a Provider[A], b Provider[B], fn func(A, B) (R, error)) Provider[R] {
	return Func[R](func() (R, error) {
		var zero R
		av, err := a.Get()
		if err != nil {
			return zero, err
		}
		bv, err := b.Get()
		if err != nil {
			return zero, err
		}
		return fn(av, bv)
	})
}

// All reads every provider in order and collects the values. The first
// failure aborts the read.
func All[T any](ps ...Provider[T]) Provider[[]T] {
	return Func[[]T](func() ([]T, error) {
		values := make([]T, 0, len(ps))
		for _, p := range ps {
			v, err := p.Get()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	})
}

// OrElse reads p and falls back to fallback when p reports a missing value.
// Other errors are returned unchanged.
func OrElse[T any](p Provider[T], fallback Provider[T]) Provider[T] {
	return Func[T](func() (T, error) {
		v, err := p.Get()
		if IsMissing(err) {
			return fallback.Get()
		}
		return v, err
	})
}

// Once memoizes the first successful Get of p. Errors are not cached: a
// failed Get is retried on the next call, so inputs fixed after a failure are
// picked up.
func Once[T any](p Provider[T]) Provider[T] {
	var (
		mu    sync.Mutex
		done  bool
		value T
	)
	return Func[T](func() (T, error) {
		mu.Lock()
		defer mu.Unlock()

		if done {
			return value, nil
		}
		v, err := p.Get()
		if err != nil {
			return v, err
		}
		value, done = v, true
		return v, nil
	})
}
