package client

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/messages"
	"github.com/dmfigol/certbot/acme/resources"
	acmenet "github.com/dmfigol/certbot/net"
)

// Poll fetches the current state of an authorization from its original
// location URI and reconciles it into a fresh snapshot. The raw response is
// returned alongside so the caller can honor the server's Retry-After
// directive.
func (c *Client) Poll(ctx context.Context, authzr resources.AuthorizationResource) (resources.AuthorizationResource, *acmenet.NetResponse, error) {
	resp, err := c.net.GetURL(ctx, authzr.URI)
	if err != nil {
		return resources.AuthorizationResource{}, nil, err
	}
	if err := c.checkResponse(resp, acme.JSON_CONTENT_TYPE); err != nil {
		return resources.AuthorizationResource{}, nil, err
	}

	updated, err := c.authzrFromResponse(
		resp, authzr.Body.Identifier, authzr.URI, authzr.NewCertURI)
	if err != nil {
		return resources.AuthorizationResource{}, nil, err
	}
	return updated, resp, nil
}

// RequestIssuance POSTs a signed certificate request to the first
// authorization's new-cert URI. The request references every authorization
// by its original location URI. The response body must be a DER encoded
// certificate and must carry an "up" link to the issuer chain.
func (c *Client) RequestIssuance(ctx context.Context, csrDER []byte, authzrs []resources.AuthorizationResource) (resources.CertificateResource, error) {
	if len(authzrs) == 0 {
		return resources.CertificateResource{}, errors.New("requestIssuance: no authorizations given")
	}

	authzURIs := make([]string, len(authzrs))
	for i, authzr := range authzrs {
		authzURIs[i] = authzr.URI
	}

	req := messages.CertificateRequest{
		CSR:            base64.RawURLEncoding.EncodeToString(csrDER),
		Authorizations: authzURIs,
	}

	signedBody, err := c.wrapInJWS(&req)
	if err != nil {
		return resources.CertificateResource{}, err
	}

	httpReq, err := c.net.PostRequest(ctx, authzrs[0].NewCertURI, signedBody)
	if err != nil {
		return resources.CertificateResource{}, acmenet.NewTransportError(nil, err)
	}
	httpReq.Header.Set(acme.ACCEPT_HEADER, acme.DER_CONTENT_TYPE)

	c.log.Debugw("sending new-cert request", "url", authzrs[0].NewCertURI)
	resp, err := c.net.Do(httpReq)
	if err != nil {
		return resources.CertificateResource{}, err
	}
	if err := c.checkResponse(resp, acme.DER_CONTENT_TYPE); err != nil {
		return resources.CertificateResource{}, err
	}

	if _, err := x509.ParseCertificate(resp.RespBody); err != nil {
		return resources.CertificateResource{}, acmenet.NewTransportError(resp, fmt.Errorf(
			"new-cert: response body is not a DER certificate: %s", err))
	}

	chainURI := linkHeader(resp, acme.LINK_UP)
	if chainURI == "" {
		return resources.CertificateResource{}, acmenet.NewTransportError(resp, errUpLinkMissing)
	}

	return resources.CertificateResource{
		Body:         resp.RespBody,
		URI:          resourceLocation(resp, ""),
		Authzrs:      authzrs,
		CertChainURI: chainURI,
	}, nil
}

// PollAndRequestIssuance polls every given authorization until it reaches
// the valid status and then requests certificate issuance once.
//
// Pending authorizations wait in a queue ordered by the next time a poll is
// permitted: initially every authorization is due immediately, afterwards
// the server's Retry-After directive decides, with minDelay as the floor
// when the directive is absent. Between due times the flow suspends; ctx
// cancellation interrupts the suspension and aborts the flow.
//
// Polling always targets each authorization's original location URI, and
// the returned slice carries the final reconciled snapshot for each given
// authorization, in the same order. The certificate request references the
// original authorizations, not the refreshed snapshots.
func (c *Client) PollAndRequestIssuance(ctx context.Context, csrDER []byte, authzrs []resources.AuthorizationResource, minDelay time.Duration) (resources.CertificateResource, []resources.AuthorizationResource, error) {
	queue := &pollQueue{}
	updated := make(map[string]resources.AuthorizationResource, len(authzrs))

	now := time.Now()
	for _, authzr := range authzrs {
		queue.schedule(authzr, now)
		updated[authzr.URI] = authzr
	}

	for queue.Len() > 0 {
		entry := queue.next()

		if err := sleepUntil(ctx, entry.due); err != nil {
			return resources.CertificateResource{}, nil, err
		}

		updatedAuthzr, resp, err := c.Poll(ctx, entry.authzr)
		if err != nil {
			return resources.CertificateResource{}, nil, err
		}
		updated[entry.authzr.URI] = updatedAuthzr

		if updatedAuthzr.Body.Status != acme.StatusValid {
			c.log.Debugw("authorization still pending",
				"uri", entry.authzr.URI, "status", updatedAuthzr.Body.Status)
			queue.schedule(entry.authzr, retryAfter(resp, minDelay))
		}
	}

	certr, err := c.RequestIssuance(ctx, csrDER, authzrs)
	if err != nil {
		return resources.CertificateResource{}, nil, err
	}

	final := make([]resources.AuthorizationResource, len(authzrs))
	for i, authzr := range authzrs {
		final[i] = updated[authzr.URI]
	}
	return certr, final, nil
}
