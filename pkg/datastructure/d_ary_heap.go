package datastructure

import (
	"errors"

	"github.com/lintang-b-s/gridnav/pkg"
)

var (
	ErrHeapEmpty       = errors.New("heap is empty")
	ErrInvalidHeapItem = errors.New("invalid index or new value")
)

// Ranked is an item the heap can order. the heap writes the item position back through SetPos
// so DecreaseKey never has to search for it.
type Ranked interface {
	GetRank() float64
	// GetTieBreak orders items of equal rank, smaller first.
	GetTieBreak() float64
	SetRank(rank float64)
	SetPos(i int)
	GetPos() int
}

// MinHeap d-ary heap priorityqueue
type MinHeap[T Ranked] struct {
	heap []T
	d    int
}

func NewBinaryHeap[T Ranked]() *MinHeap[T] {
	return NewdAryHeap[T](2)
}

func NewFourAryHeap[T Ranked]() *MinHeap[T] {
	return NewdAryHeap[T](4)
}

func NewdAryHeap[T Ranked](d int) *MinHeap[T] {
	if d < 2 {
		d = 2
	}
	return &MinHeap[T]{
		heap: make([]T, 0),
		d:    d,
	}
}

func (h *MinHeap[T]) GetArity() int {
	return h.d
}

// parent get index dari parent
func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / h.d
}

func (h *MinHeap[T]) less(i, j int) bool {
	ri, rj := h.heap[i].GetRank(), h.heap[j].GetRank()
	if ri != rj {
		return ri < rj
	}
	return h.heap[i].GetTieBreak() < h.heap[j].GetTieBreak()
}

// heapifyUp keeps the heap property: while the item at index is smaller than its parent, swap them. O(log N).
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.less(index, h.parent(index)) {
		p := h.parent(index)
		h.Swap(index, p)
		index = p
	}
}

// heapifyDown keeps the heap property: swap the item at index with its smallest child until no child is smaller. O(d log N).
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		leftMostChild := index*h.d + 1
		if leftMostChild >= len(h.heap) {
			return
		}

		sentinel := leftMostChild + h.d
		if sentinel > len(h.heap) {
			sentinel = len(h.heap)
		}

		smallest := leftMostChild
		for i := leftMostChild + 1; i < sentinel; i++ {
			if h.less(i, smallest) {
				smallest = i
			}
		}

		if !h.less(smallest, index) {
			return
		}
		h.Swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]

	h.heap[i].SetPos(i)
	h.heap[j].SetPos(j)
}

func (h *MinHeap[T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

// Clear empties the heap and keeps its backing array for the next search.
func (h *MinHeap[T]) Clear() {
	for i := range h.heap {
		h.heap[i].SetPos(-1)
	}
	clear(h.heap)
	h.heap = h.heap[:0]
}

// GetMin returns the minimum item (index 0) without removing it.
func (h *MinHeap[T]) GetMin() (T, error) {
	if h.IsEmpty() {
		var zero T
		return zero, ErrHeapEmpty
	}
	return h.heap[0], nil
}

func (h *MinHeap[T]) GetMinRank() float64 {
	if h.IsEmpty() {
		return 2 * pkg.INF_WEIGHT
	}
	return h.heap[0].GetRank()
}

// Contains reports whether item currently sits in this heap.
func (h *MinHeap[T]) Contains(item T) bool {
	pos := item.GetPos()
	return pos >= 0 && pos < len(h.heap) && any(h.heap[pos]) == any(item)
}

// Insert item baru. O(log N)
func (h *MinHeap[T]) Insert(item T) {
	h.heap = append(h.heap, item)
	index := h.Size() - 1
	item.SetPos(index)
	h.heapifyUp(index)
}

// ExtractMin removes and returns the minimum item. O(d log N)
func (h *MinHeap[T]) ExtractMin() (T, error) {
	if h.IsEmpty() {
		var zero T
		return zero, ErrHeapEmpty
	}
	root := h.heap[0]
	last := h.Size() - 1

	h.Swap(0, last)

	var zero T
	h.heap[last] = zero
	h.heap = h.heap[:last]
	root.SetPos(-1)
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}

	return root, nil
}

// DecreaseKey lowers the rank of an item that is already in the heap. O(log N)
func (h *MinHeap[T]) DecreaseKey(item T, rank float64) error {
	if !h.Contains(item) || item.GetRank() < rank {
		return ErrInvalidHeapItem
	}

	item.SetRank(rank)
	h.heapifyUp(item.GetPos())
	return nil
}
