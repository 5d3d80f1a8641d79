package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/messages"
	"github.com/dmfigol/certbot/acme/resources"
)

// Revoke requests revocation of a certificate by POSTing a signed
// revocation body to the certificate's own location. The body references
// the certificate's originating authorizations by their original URIs and
// carries the desired timing: messages.RevocationNow or an RFC 3339
// timestamp. The server must answer with exactly HTTP 200; any other
// status, even another 2xx, is an error.
func (c *Client) Revoke(ctx context.Context, certr resources.CertificateResource, when string) error {
	if certr.URI == "" {
		return errors.New("revoke: certificate has no location URI")
	}

	authzURIs := make([]string, len(certr.Authzrs))
	for i, authzr := range certr.Authzrs {
		authzURIs[i] = authzr.URI
	}

	rev := messages.Revocation{
		Revoke:         when,
		Authorizations: authzURIs,
	}

	signedBody, err := c.wrapInJWS(&rev)
	if err != nil {
		return err
	}

	c.log.Debugw("sending revocation request", "url", certr.URI, "when", when)
	resp, err := c.net.PostURL(ctx, certr.URI, signedBody)
	if err != nil {
		return err
	}
	if err := c.checkResponse(resp, acme.JSON_CONTENT_TYPE); err != nil {
		return err
	}

	if code := resp.Response.StatusCode; code != http.StatusOK {
		return &messages.Error{
			Detail: "successful revocation must return HTTP OK status",
			Status: code,
		}
	}

	c.log.Infow("certificate revoked", "uri", certr.URI)
	return nil
}
