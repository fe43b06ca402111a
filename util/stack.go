package util

import "slices"

// Stack is a LIFO worklist
type Stack[A any] struct {
	items []A
}

// StackOf returns a stack holding items, the last one on top
func StackOf[A any](items ...A) *Stack[A] {
	return &Stack[A]{items: slices.Clone(items)}
}

func (s *Stack[A]) Push(items ...A) {
	s.items = append(s.items, items...)
}

func (s *Stack[A]) Pop() (top A, ok bool) {
	n := len(s.items)
	if n == 0 {
		return top, false
	}
	top = s.items[n-1]
	clear(s.items[n-1:])
	s.items = s.items[:n-1]
	return top, true
}

func (s *Stack[A]) Len() int { return len(s.items) }
