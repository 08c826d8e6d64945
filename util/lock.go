package util

import "sync"

type Locked[T any] struct {
	value T
	sync.RWMutex
}

func NewLocked[T any](v T) *Locked[T] {
	return &Locked[T]{value: v}
}

func (l *Locked[T]) Value() T {
	l.RLock()
	defer l.RUnlock()

	return l.value
}

func (l *Locked[T]) SetValue(v T) *Locked[T] {
	l.Lock()
	defer l.Unlock()

	l.value = v

	return l
}
