package client

import (
	"encoding/json"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/keys"
	"github.com/dmfigol/certbot/acme/messages"
	"github.com/dmfigol/certbot/acme/resources"
	acmenet "github.com/dmfigol/certbot/net"
)

var errNextLinkMissing = errors.New(`required "next" link missing`)
var errUpLinkMissing = errors.New(`required "up" link missing`)

// accountKeyMismatch reports whether a server-declared account key differs
// from the client's own. A missing key counts as a mismatch: the server is
// required to bind registrations and authorizations to the requesting key.
func (c *Client) accountKeyMismatch(jwk *jose.JSONWebKey) bool {
	thumbprint, err := keys.PublicKeyThumbprint(jwk)
	if err != nil {
		return true
	}
	return thumbprint != c.keyThumbprint
}

// resourceLocation resolves a resource's own location URI from the
// response's Location header, falling back to the caller-supplied URI when
// the header is absent. Some servers omit Location on updates.
func resourceLocation(resp *acmenet.NetResponse, fallback string) string {
	if loc := resp.Response.Header.Get(acme.LOCATION_HEADER); loc != "" {
		return loc
	}
	return fallback
}

// regrFromResponse reconciles a raw response into a RegistrationResource.
// The uri and newAuthzURI arguments supply fallback values for servers that
// omit the Location header or "next" link on registration updates; pass
// empty strings when reconciling a new-reg response, where both are
// required.
func (c *Client) regrFromResponse(resp *acmenet.NetResponse, uri, newAuthzURI string) (resources.RegistrationResource, error) {
	var body messages.Registration
	if err := json.Unmarshal(resp.RespBody, &body); err != nil {
		return resources.RegistrationResource{}, acmenet.NewTransportError(resp, err)
	}

	if newAuthzURI == "" {
		newAuthzURI = linkHeader(resp, acme.LINK_NEXT)
		if newAuthzURI == "" {
			return resources.RegistrationResource{}, acmenet.NewTransportError(resp, errNextLinkMissing)
		}
	}

	return resources.RegistrationResource{
		Body:           body,
		URI:            resourceLocation(resp, uri),
		NewAuthzURI:    newAuthzURI,
		TermsOfService: linkHeader(resp, acme.LINK_TERMS),
	}, nil
}

// authzrFromResponse reconciles a raw response into an
// AuthorizationResource and verifies the server-declared identity fields:
// the body must reference the identifier the client requested and the
// client's own account key. The uri and newCertURI arguments supply
// fallback values when re-reconciling a polled authorization.
func (c *Client) authzrFromResponse(resp *acmenet.NetResponse, identifier messages.Identifier, uri, newCertURI string) (resources.AuthorizationResource, error) {
	var body messages.Authorization
	if err := json.Unmarshal(resp.RespBody, &body); err != nil {
		return resources.AuthorizationResource{}, acmenet.NewTransportError(resp, err)
	}

	if newCertURI == "" {
		newCertURI = linkHeader(resp, acme.LINK_NEXT)
		if newCertURI == "" {
			return resources.AuthorizationResource{}, acmenet.NewTransportError(resp, errNextLinkMissing)
		}
	}

	authzr := resources.AuthorizationResource{
		Body:       body,
		URI:        resourceLocation(resp, uri),
		NewCertURI: newCertURI,
	}

	if c.accountKeyMismatch(body.Key) {
		return resources.AuthorizationResource{}, &UnexpectedUpdateError{
			Resource: authzr,
			Reason:   "authorization is not bound to the account key",
		}
	}
	if !body.Identifier.Equals(identifier) {
		return resources.AuthorizationResource{}, &UnexpectedUpdateError{
			Resource: authzr,
			Reason: fmt.Sprintf("authorization identifier %q does not match requested %q",
				body.Identifier.Value, identifier.Value),
		}
	}

	return authzr, nil
}
