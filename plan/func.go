package plan

// Func is a named one-to-one function.
type Func[T, U any] struct {
	Name string
	Fn   func(T) U
}

// Fn returns a named function.
func Fn[T, U any](name string, fn func(T) U) Func[T, U] {
	return Func[T, U]{Name: name, Fn: fn}
}

// Pred is a named predicate.
type Pred[T any] struct {
	Name string
	Fn   func(T) bool
}

// Predicate returns a named predicate.
func Predicate[T any](name string, fn func(T) bool) Pred[T] {
	return Pred[T]{Name: name, Fn: fn}
}

// FlatFunc is a named one-to-many function.
type FlatFunc[T, U any] struct {
	Name string
	Fn   func(T) []U
}

// FlatFn returns a named one-to-many function.
func FlatFn[T, U any](name string, fn func(T) []U) FlatFunc[T, U] {
	return FlatFunc[T, U]{Name: name, Fn: fn}
}

// KeyFunc derives a (key, value) pair from an element.
type KeyFunc[T, K, V any] struct {
	Name string
	Fn   func(T) (K, V)
}

// KeyFn returns a named key function.
func KeyFn[T, K, V any](name string, fn func(T) (K, V)) KeyFunc[T, K, V] {
	return KeyFunc[T, K, V]{Name: name, Fn: fn}
}

// PairFunc is a named function over a pair.
type PairFunc[K, V, U any] struct {
	Name string
	Fn   func(K, V) U
}

// PairFn returns a named pair function.
func PairFn[K, V, U any](name string, fn func(K, V) U) PairFunc[K, V, U] {
	return PairFunc[K, V, U]{Name: name, Fn: fn}
}

// PairPred is a named predicate over a pair.
type PairPred[K, V any] struct {
	Name string
	Fn   func(K, V) bool
}

// PairPredicate returns a named pair predicate.
func PairPredicate[K, V any](name string, fn func(K, V) bool) PairPred[K, V] {
	return PairPred[K, V]{Name: name, Fn: fn}
}

// GroupFunc is a named function over a key and all of its values.
type GroupFunc[K, V, U any] struct {
	Name string
	Fn   func(K, []V) U
}

// GroupFn returns a named group function.
func GroupFn[K, V, U any](name string, fn func(K, []V) U) GroupFunc[K, V, U] {
	return GroupFunc[K, V, U]{Name: name, Fn: fn}
}

func fnName(name string) string {
	if name == "" {
		return anonName()
	}
	return name
}
