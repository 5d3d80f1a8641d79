package client

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/messages"
	"github.com/dmfigol/certbot/acme/resources"
	acmenet "github.com/dmfigol/certbot/net"
)

// Register creates a new account registration with the CA using the
// client's account key and the given contact addresses. The server must
// answer with HTTP 201, a "next" link for new authorizations, and a body
// echoing the account key and contacts; a body that does not echo them is
// an *UnexpectedUpdateError.
func (c *Client) Register(ctx context.Context, contact []string) (resources.RegistrationResource, error) {
	newReg := messages.Registration{Contact: contact}

	signedBody, err := c.wrapInJWS(&newReg)
	if err != nil {
		return resources.RegistrationResource{}, err
	}

	c.log.Debugw("sending new-reg request",
		"url", c.NewRegURL.String(), "contact", contact)
	resp, err := c.net.PostURL(ctx, c.NewRegURL.String(), signedBody)
	if err != nil {
		return resources.RegistrationResource{}, err
	}
	if err := c.checkResponse(resp, acme.JSON_CONTENT_TYPE); err != nil {
		return resources.RegistrationResource{}, err
	}
	if code := resp.Response.StatusCode; code != http.StatusCreated {
		return resources.RegistrationResource{}, acmenet.NewTransportError(resp, fmt.Errorf(
			"register: server returned status %d, expected %d", code, http.StatusCreated))
	}

	regr, err := c.regrFromResponse(resp, "", "")
	if err != nil {
		return resources.RegistrationResource{}, err
	}

	if c.accountKeyMismatch(regr.Body.Key) {
		return resources.RegistrationResource{}, &UnexpectedUpdateError{
			Resource: regr,
			Reason:   "registration is not bound to the account key",
		}
	}
	if !regr.Body.ContactsEqual(contact) {
		return resources.RegistrationResource{}, &UnexpectedUpdateError{
			Resource: regr,
			Reason:   "registration contact list differs from the submitted one",
		}
	}

	c.log.Infow("registered account", "uri", regr.URI)
	return regr, nil
}

// UpdateRegistration posts the given registration's body to its own
// location and returns the reconciled snapshot. By default no equality
// check is made against the returned body: servers legitimately vary fields
// on update and may omit the Location header and "next" link, so the
// held URIs are used as fallbacks. StrictRegistrationUpdates restores the
// equality check.
func (c *Client) UpdateRegistration(ctx context.Context, regr resources.RegistrationResource) (resources.RegistrationResource, error) {
	signedBody, err := c.wrapInJWS(&regr.Body)
	if err != nil {
		return resources.RegistrationResource{}, err
	}

	resp, err := c.net.PostURL(ctx, regr.URI, signedBody)
	if err != nil {
		return resources.RegistrationResource{}, err
	}
	if err := c.checkResponse(resp, acme.JSON_CONTENT_TYPE); err != nil {
		return resources.RegistrationResource{}, err
	}

	updated, err := c.regrFromResponse(resp, regr.URI, regr.NewAuthzURI)
	if err != nil {
		return resources.RegistrationResource{}, err
	}

	if c.strictRegistrationUpdates && !reflect.DeepEqual(updated, regr) {
		return resources.RegistrationResource{}, &UnexpectedUpdateError{
			Resource: updated,
			Reason:   "updated registration differs from the submitted one",
		}
	}

	return updated, nil
}
