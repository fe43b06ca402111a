package util

import (
	"testing"

	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	s := StackOf(1, 2)
	s.Push(3, 4)
	assert.Equal(t, 4, s.Len())

	var popped []int
	for v, ok := s.Pop(); ok; v, ok = s.Pop() {
		popped = append(popped, v)
	}
	assert.Equal(t, []int{4, 3, 2, 1}, popped)
	assert.Equal(t, 0, s.Len())

	_, ok := s.Pop()
	assert.False(t, ok)
}

func TestSortedSlice(t *testing.T) {
	assert.Equal(t, []string{"T1", "T10", "T2"}, SortedSlice[string](set.From([]string{"T2", "T10", "T1"})))
	assert.Empty(t, SortedSlice[int](set.New[int](0)))
}
