package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmfigol/certbot/acme/resources"
	acmenet "github.com/dmfigol/certbot/net"
)

func pollAuthzr(uri string) resources.AuthorizationResource {
	return resources.AuthorizationResource{URI: uri}
}

func TestPollQueueOrdering(t *testing.T) {
	now := time.Now()

	queue := &pollQueue{}
	queue.schedule(pollAuthzr("c"), now.Add(2*time.Second))
	queue.schedule(pollAuthzr("a"), now)
	queue.schedule(pollAuthzr("b"), now.Add(time.Second))

	var order []string
	for queue.Len() > 0 {
		order = append(order, queue.next().authzr.URI)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestPollQueueTieBreak(t *testing.T) {
	// Entries due at the same instant pop in insertion order.
	now := time.Now()

	queue := &pollQueue{}
	queue.schedule(pollAuthzr("first"), now)
	queue.schedule(pollAuthzr("second"), now)
	queue.schedule(pollAuthzr("third"), now)

	var order []string
	for queue.Len() > 0 {
		order = append(order, queue.next().authzr.URI)
	}
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestPollQueueReschedule(t *testing.T) {
	now := time.Now()

	queue := &pollQueue{}
	queue.schedule(pollAuthzr("a"), now)
	queue.schedule(pollAuthzr("b"), now.Add(time.Second))

	entry := queue.next()
	require.Equal(t, "a", entry.authzr.URI)
	queue.schedule(entry.authzr, now.Add(2*time.Second))

	assert.Equal(t, "b", queue.next().authzr.URI)
	assert.Equal(t, "a", queue.next().authzr.URI)
	assert.Equal(t, 0, queue.Len())
}

func retryAfterResponse(header string) *acmenet.NetResponse {
	h := http.Header{}
	if header != "" {
		h.Set("Retry-After", header)
	}
	return &acmenet.NetResponse{Response: &http.Response{Header: h}}
}

func TestRetryAfterSeconds(t *testing.T) {
	before := time.Now()
	when := retryAfter(retryAfterResponse("30"), time.Second)
	assert.WithinDuration(t, before.Add(30*time.Second), when, time.Second)
}

func TestRetryAfterHTTPDate(t *testing.T) {
	target := time.Now().Add(time.Minute).UTC().Truncate(time.Second)
	when := retryAfter(retryAfterResponse(target.Format(http.TimeFormat)), time.Second)
	assert.True(t, when.Equal(target), "got %s, want %s", when, target)
}

func TestRetryAfterAbsent(t *testing.T) {
	before := time.Now()
	when := retryAfter(retryAfterResponse(""), 5*time.Second)
	assert.WithinDuration(t, before.Add(5*time.Second), when, time.Second)
}

func TestRetryAfterUnparseable(t *testing.T) {
	before := time.Now()
	when := retryAfter(retryAfterResponse("soon"), 5*time.Second)
	assert.WithinDuration(t, before.Add(5*time.Second), when, time.Second)
}

func TestSleepUntilPast(t *testing.T) {
	require.NoError(t, sleepUntil(context.Background(), time.Now().Add(-time.Second)))
}

func TestSleepUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- sleepUntil(ctx, time.Now().Add(time.Minute))
	}()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("sleepUntil did not return after cancellation")
	}
}
