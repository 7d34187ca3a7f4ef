package scheduler

import "container/heap"

type entry struct {
	Transition
	seq   uint64
	index int
}

// transitionQueue is a min-heap on (FireAt, seq)
type transitionQueue []*entry

func (q transitionQueue) Len() int { return len(q) }

func (q transitionQueue) Less(i, j int) bool {
	if !q[i].FireAt.Equal(q[j].FireAt) {
		return q[i].FireAt.Before(q[j].FireAt)
	}
	return q[i].seq < q[j].seq
}

func (q transitionQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *transitionQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *transitionQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

func (q transitionQueue) peek() *entry {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

var _ heap.Interface = (*transitionQueue)(nil)
