package client

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/messages"
	"github.com/dmfigol/certbot/acme/resources"
)

// fakeCA serves authorization polls and a new-cert endpoint. Every
// authorization reports pending on the first poll and valid afterwards.
type fakeCA struct {
	t       *testing.T
	key     *ecdsa.PrivateKey
	certDER []byte

	mu        sync.Mutex
	pollCount map[string]int
	certCalls int
	certReq   messages.CertificateRequest
}

func (ca *fakeCA) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/authz/", ca.serveAuthz)
	mux.HandleFunc("/new-cert", ca.serveNewCert)
	return mux
}

func (ca *fakeCA) serveAuthz(w http.ResponseWriter, r *http.Request) {
	require.Equal(ca.t, http.MethodGet, r.Method)

	ca.mu.Lock()
	ca.pollCount[r.URL.Path]++
	count := ca.pollCount[r.URL.Path]
	ca.mu.Unlock()

	status := acme.StatusValid
	if count == 1 {
		status = acme.StatusPending
		w.Header().Set("Retry-After", "0")
	}

	domain := r.URL.Path[len("/authz/"):]
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{
		"identifier": {"type": "dns", "value": %q},
		"status": %q,
		"key": %s
	}`, domain, status, accountKeyJSON(ca.t, ca.key))
}

func (ca *fakeCA) serveNewCert(w http.ResponseWriter, r *http.Request) {
	require.Equal(ca.t, http.MethodPost, r.Method)
	assert.Equal(ca.t, "application/pkix-cert", r.Header.Get("Accept"))

	ca.mu.Lock()
	ca.certCalls++
	ca.mu.Unlock()

	decodeJWSPayload(ca.t, &ca.certReq, r)

	w.Header().Set("Content-Type", "application/pkix-cert")
	w.Header().Set("Location", "https://ca.example/acme/cert/1")
	w.Header().Add("Link", `<https://ca.example/acme/issuer-cert>;rel="up"`)
	w.WriteHeader(http.StatusCreated)
	w.Write(ca.certDER)
}

func TestPollAndRequestIssuance(t *testing.T) {
	ca := &fakeCA{
		t:         t,
		certDER:   testCertDER(t),
		pollCount: map[string]int{},
	}
	ts := httptest.NewServer(ca.handler())
	defer ts.Close()

	c, key := newTestClient(t, ts.URL)
	ca.key = key

	authzrs := []resources.AuthorizationResource{
		{
			Body:       messages.Authorization{Identifier: messages.DNSIdentifier("one.example.com")},
			URI:        ts.URL + "/authz/one.example.com",
			NewCertURI: ts.URL + "/new-cert",
		},
		{
			Body:       messages.Authorization{Identifier: messages.DNSIdentifier("two.example.com")},
			URI:        ts.URL + "/authz/two.example.com",
			NewCertURI: ts.URL + "/new-cert",
		},
	}

	csrDER := []byte{0x30, 0x03, 0x02, 0x01, 0x00}
	certr, updated, err := c.PollAndRequestIssuance(
		context.Background(), csrDER, authzrs, time.Millisecond)
	require.NoError(t, err)

	// Two polls per authorization: pending then valid, always at the
	// original location.
	assert.Equal(t, map[string]int{
		"/authz/one.example.com": 2,
		"/authz/two.example.com": 2,
	}, ca.pollCount)

	// Exactly one certificate request, referencing the original
	// authorization URIs.
	assert.Equal(t, 1, ca.certCalls)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(csrDER), ca.certReq.CSR)
	assert.Equal(t, []string{authzrs[0].URI, authzrs[1].URI}, ca.certReq.Authorizations)

	assert.Equal(t, ca.certDER, certr.Body)
	assert.Equal(t, "https://ca.example/acme/cert/1", certr.URI)
	assert.Equal(t, "https://ca.example/acme/issuer-cert", certr.CertChainURI)
	assert.Equal(t, authzrs, certr.Authzrs)

	// The returned snapshots follow the input order and carry the final
	// state.
	require.Len(t, updated, 2)
	assert.Equal(t, authzrs[0].URI, updated[0].URI)
	assert.Equal(t, authzrs[1].URI, updated[1].URI)
	assert.Equal(t, acme.StatusValid, updated[0].Body.Status)
	assert.Equal(t, acme.StatusValid, updated[1].Body.Status)
}

func TestPollAndRequestIssuanceCancelled(t *testing.T) {
	ca := &fakeCA{
		t:         t,
		certDER:   testCertDER(t),
		pollCount: map[string]int{},
	}
	ts := httptest.NewServer(ca.handler())
	defer ts.Close()

	c, key := newTestClient(t, ts.URL)
	ca.key = key

	authzrs := []resources.AuthorizationResource{{
		Body:       messages.Authorization{Identifier: messages.DNSIdentifier("one.example.com")},
		URI:        ts.URL + "/authz/one.example.com",
		NewCertURI: ts.URL + "/new-cert",
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.PollAndRequestIssuance(ctx, nil, authzrs, time.Minute)
	require.Error(t, err)
	assert.Equal(t, 0, ca.certCalls)
}

func TestRequestIssuanceNoAuthorizations(t *testing.T) {
	c, _ := newTestClient(t, "https://ca.example/acme/new-reg")

	_, err := c.RequestIssuance(context.Background(), nil, nil)
	require.Error(t, err)
}
