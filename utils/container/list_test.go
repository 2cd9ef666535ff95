package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/container"
)

type testData struct {
	id int32
}

func (t testData) ID() int32 {
	return t.id
}

func (t testData) V() float64 {
	return 0
}

func newNode(s float64, id int32) *container.ListNode[testData, struct{}] {
	return &container.ListNode[testData, struct{}]{
		S:     s,
		Value: testData{id: id},
	}
}

func TestListInit(t *testing.T) {
	l := &container.List[testData, struct{}]{}
	assert.Nil(t, l.First())
	assert.Nil(t, l.Last())
	assert.Equal(t, 0, l.Len())
}

func TestListOperation(t *testing.T) {
	l := &container.List[testData, struct{}]{}

	// test: insert

	// ^, 1, ^
	n1 := newNode(1, 1)
	l.PushBack(n1)
	// ^, 2, 1, ^
	n2 := newNode(2, 2)
	l.PushFront(n2)
	// ^, 3, 2, 1, ^
	n3 := newNode(3, 3)
	n2.InsertBefore(n3)
	// ^, 3, 2, 1, 4, ^
	n4 := newNode(4, 4)
	n1.InsertAfter(n4)
	assert.Equal(t, 4, l.Len())

	// test: first last next prev

	n := l.First()
	assert.Equal(t, n3, n)
	n = n.Next()
	assert.Equal(t, n2, n)
	n = n.Next()
	assert.Equal(t, n1, n)
	assert.Equal(t, n, n.Next().Prev())
	assert.Equal(t, n, n.Prev().Next())
	n = n.Next()
	assert.Equal(t, n4, n)

	assert.Equal(t, n4, l.Last())

	// test: pop merge

	// before: head, 3, 2, 1, 4, tail
	n0 := newNode(0, 0)
	l.PushFront(n0)
	unsorted := l.PopUnsorted()
	assert.ElementsMatch(t, []*container.ListNode[testData, struct{}]{n2, n1}, unsorted)
	assert.Equal(t, 5-2, l.Len())

	// head, 0, 1, 2, 3, 4, tail
	l.Merge(unsorted)
	node := l.First()
	assert.Equal(t, n0, node)
	node = node.Next()
	assert.Equal(t, n1, node)
	node = node.Next()
	assert.Equal(t, n2, node)
	node = node.Next()
	assert.Equal(t, n3, node)
	node = node.Next()
	assert.Equal(t, n4, node)
	node = node.Next()
	assert.Nil(t, node)

	// test: remove

	// head, 0, 1, 2, 3, tail
	l.Remove(n4)
	assert.Equal(t, n3, l.Last())
	assert.Equal(t, 5-1, l.Len())
}

func TestListSortedInsert(t *testing.T) {
	l := &container.List[testData, struct{}]{}

	n5 := newNode(0.5, 5)
	n9 := newNode(0.9, 9)
	n1 := newNode(0.1, 1)
	l.Insert(n5)
	l.Insert(n9)
	l.Insert(n1)
	assert.Equal(t, []float64{0.1, 0.5, 0.9}, l.Keys())

	// equal keys are ordered by value ID
	n3 := newNode(0.5, 3)
	n7 := newNode(0.5, 7)
	l.Insert(n7)
	l.Insert(n3)
	assert.Equal(t, []int32{1, 3, 5, 7, 9},
		[]int32{l.First().ID(), l.First().Next().ID(), l.First().Next().Next().ID(),
			l.Last().Prev().ID(), l.Last().ID()})
}
