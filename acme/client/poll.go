package client

import (
	"container/heap"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/resources"
	acmenet "github.com/dmfigol/certbot/net"
)

// pollEntry pairs a pending authorization with the earliest time it may be
// polled again. The authorization held here is always the original
// snapshot: its URI is the polling target for the lifetime of the queue, no
// matter how often the body is refreshed.
type pollEntry struct {
	due    time.Time
	seq    int
	authzr resources.AuthorizationResource
}

// pollQueue is a min-heap of pollEntries keyed by due time. Entries with
// equal due times pop in insertion order via the seq counter; the protocol
// defines no ordering for ties, insertion order just keeps it
// deterministic.
type pollQueue struct {
	entries []*pollEntry
	nextSeq int
}

var _ heap.Interface = (*pollQueue)(nil)

func (q *pollQueue) Len() int { return len(q.entries) }

func (q *pollQueue) Less(i, j int) bool {
	if q.entries[i].due.Equal(q.entries[j].due) {
		return q.entries[i].seq < q.entries[j].seq
	}
	return q.entries[i].due.Before(q.entries[j].due)
}

func (q *pollQueue) Swap(i, j int) {
	q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
}

func (q *pollQueue) Push(x interface{}) {
	q.entries = append(q.entries, x.(*pollEntry))
}

func (q *pollQueue) Pop() interface{} {
	old := q.entries
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	q.entries = old[:n-1]
	return entry
}

// schedule enqueues an authorization to become due at the given time.
func (q *pollQueue) schedule(authzr resources.AuthorizationResource, due time.Time) {
	heap.Push(q, &pollEntry{
		due:    due,
		seq:    q.nextSeq,
		authzr: authzr,
	})
	q.nextSeq++
}

// next pops the earliest due entry. Callers must check Len first.
func (q *pollQueue) next() *pollEntry {
	return heap.Pop(q).(*pollEntry)
}

// retryAfter computes the next poll time from a response's Retry-After
// header. The header value is either an integer number of seconds or an
// HTTP date; when it is absent or unparseable the min delay applies.
func retryAfter(resp *acmenet.NetResponse, min time.Duration) time.Time {
	now := time.Now()

	header := resp.Response.Header.Get(acme.RETRY_AFTER_HEADER)
	if header == "" {
		return now.Add(min)
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return now.Add(time.Duration(seconds) * time.Second)
	}

	if when, err := http.ParseTime(header); err == nil {
		return when
	}

	return now.Add(min)
}

// sleepUntil suspends the flow until the given time elapses or the context
// is cancelled. This is the only suspension point in the protocol core.
func sleepUntil(ctx context.Context, when time.Time) error {
	delay := time.Until(when)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
