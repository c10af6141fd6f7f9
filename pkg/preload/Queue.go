package preload

import "sort"

// Request asks for one image of an album to be preloaded.
type Request struct {
	URL         string
	Index       int
	Priority    int
	IsThumbnail bool
}

/*
Queue holds pending preload requests. It is re-sorted by descending priority
before every dequeue. The sort is stable, so requests of equal priority come
out in the order they went in. Albums are small enough that sorting on each
change is cheaper than maintaining a heap. Queue is not safe for concurrent
use; the Scheduler guards it.
*/
type Queue struct {
	requests []Request
}

func (q *Queue) Push(requests ...Request) {
	q.requests = append(q.requests, requests...)
}

// Pop removes and returns the highest priority request.
func (q *Queue) Pop() (Request, bool) {
	if len(q.requests) == 0 {
		return Request{}, false
	}

	q.sort()

	result := q.requests[0]
	q.requests = q.requests[1:]
	return result, true
}

// Reprioritize recomputes every request's priority for a viewer now showing
// current and re-sorts the queue.
func (q *Queue) Reprioritize(current int) {
	for i := range q.requests {
		q.requests[i].Priority = navigationPriority(q.requests[i].Index, current, q.requests[i].IsThumbnail)
	}

	q.sort()
}

func (q *Queue) Reset() {
	q.requests = nil
}

func (q *Queue) Len() int {
	return len(q.requests)
}

// Snapshot returns the pending requests in the order they would be serviced.
func (q *Queue) Snapshot() []Request {
	q.sort()

	result := make([]Request, len(q.requests))
	copy(result, q.requests)
	return result
}

func (q *Queue) sort() {
	sort.SliceStable(q.requests, func(i, j int) bool {
		return q.requests[i].Priority > q.requests[j].Priority
	})
}
