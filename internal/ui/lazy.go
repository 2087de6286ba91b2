package ui

import "sync"

// Lazy holds a value built on first use. The constructor runs at most once,
// even under concurrent Get calls; its error is remembered.
type Lazy[T any] struct {
	once  sync.Once
	build func() (T, error)
	val   T
	err   error
}

// NewLazy returns a holder that calls build on the first Get.
func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Get returns the value, building it if needed.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.build()
		l.build = nil
	})
	return l.val, l.err
}
