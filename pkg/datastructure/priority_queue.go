package datastructure

import "github.com/pkg/errors"

var (
	ErrEmptyHeap    = errors.New("heap is empty")
	ErrItemNotFound = errors.New("item not found in heap")
)

type PriorityQueueNode[T comparable] struct {
	Rank int64
	Item T
	// seq breaks rank ties in (re)insertion order.
	seq uint64
}

// MinHeap is an indexed binary heap. Each item appears at most once, so its rank can be decreased in place.
type MinHeap[T comparable] struct {
	heap    []PriorityQueueNode[T]
	pos     map[T]int
	nextSeq uint64
}

func NewMinHeap[T comparable]() *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 0),
		pos:  make(map[T]int),
	}
}

func (h *MinHeap[T]) less(i, j int) bool {
	if h.heap[i].Rank != h.heap[j].Rank {
		return h.heap[i].Rank < h.heap[j].Rank
	}
	return h.heap[i].seq < h.heap[j].seq
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i].Item] = i
	h.pos[h.heap[j].Item] = j
}

// heapifyUp naikkan node sampai parent lebih kecil.
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 {
		parent := (index - 1) / 2
		if !h.less(index, parent) {
			return
		}
		h.swap(index, parent)
		index = parent
	}
}

// heapifyDown turunkan node ke child terkecil.
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		smallest := index
		left := 2*index + 1
		right := 2*index + 2
		if left < len(h.heap) && h.less(left, smallest) {
			smallest = left
		}
		if right < len(h.heap) && h.less(right, smallest) {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) Contains(item T) bool {
	_, ok := h.pos[item]
	return ok
}

// Insert adds a new item. Inserting an item already in the heap updates its rank instead.
func (h *MinHeap[T]) Insert(node PriorityQueueNode[T]) {
	if idx, ok := h.pos[node.Item]; ok {
		h.update(idx, node.Rank)
		return
	}
	node.seq = h.nextSeq
	h.nextSeq++
	h.heap = append(h.heap, node)
	h.pos[node.Item] = len(h.heap) - 1
	h.heapifyUp(len(h.heap) - 1)
}

func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	return h.heap[0], nil
}

func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	root := h.heap[0]
	h.removeAt(0)
	return root, nil
}

// DecreaseKey lowers the rank of an item and requeues it behind existing items of equal rank.
func (h *MinHeap[T]) DecreaseKey(node PriorityQueueNode[T]) error {
	idx, ok := h.pos[node.Item]
	if !ok {
		return ErrItemNotFound
	}
	h.update(idx, node.Rank)
	return nil
}

func (h *MinHeap[T]) Remove(item T) bool {
	idx, ok := h.pos[item]
	if !ok {
		return false
	}
	h.removeAt(idx)
	return true
}

func (h *MinHeap[T]) Clear() {
	h.heap = h.heap[:0]
	clear(h.pos)
}

func (h *MinHeap[T]) update(idx int, rank int64) {
	old := h.heap[idx].Rank
	h.heap[idx].Rank = rank
	h.heap[idx].seq = h.nextSeq
	h.nextSeq++
	if rank < old {
		h.heapifyUp(idx)
		return
	}
	// equal rank still moves the item behind its peers.
	h.heapifyDown(idx)
}

func (h *MinHeap[T]) removeAt(idx int) {
	last := len(h.heap) - 1
	item := h.heap[idx].Item
	if idx != last {
		h.swap(idx, last)
	}
	h.heap = h.heap[:last]
	delete(h.pos, item)
	if idx < len(h.heap) {
		h.heapifyDown(idx)
		h.heapifyUp(idx)
	}
}
