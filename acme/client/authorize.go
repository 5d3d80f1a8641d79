package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/messages"
	"github.com/dmfigol/certbot/acme/resources"
	acmenet "github.com/dmfigol/certbot/net"
)

// RequestAuthorization asks the CA to authorize the given identifier by
// POSTing a new-authz body to the registration's new-authz URI. The server
// must answer with HTTP 201 and a "next" link for certificate requests.
func (c *Client) RequestAuthorization(ctx context.Context, identifier messages.Identifier, regr resources.RegistrationResource) (resources.AuthorizationResource, error) {
	newAuthz := messages.NewAuthorization(identifier)

	signedBody, err := c.wrapInJWS(&newAuthz)
	if err != nil {
		return resources.AuthorizationResource{}, err
	}

	c.log.Debugw("sending new-authz request",
		"url", regr.NewAuthzURI, "identifier", identifier.Value)
	resp, err := c.net.PostURL(ctx, regr.NewAuthzURI, signedBody)
	if err != nil {
		return resources.AuthorizationResource{}, err
	}
	if err := c.checkResponse(resp, acme.JSON_CONTENT_TYPE); err != nil {
		return resources.AuthorizationResource{}, err
	}
	if code := resp.Response.StatusCode; code != http.StatusCreated {
		return resources.AuthorizationResource{}, acmenet.NewTransportError(resp, fmt.Errorf(
			"new-authz: server returned status %d, expected %d", code, http.StatusCreated))
	}

	return c.authzrFromResponse(resp, identifier, "", "")
}

// AnswerChallenge POSTs a challenge response to the challenge's own URI and
// returns a new ChallengeResource snapshot carrying the updated body. The
// response argument is any JSON serializable challenge response; computing
// it is the caller's concern. A response whose Location differs from the
// challenge's original URI is an *UnexpectedUpdateError and no update is
// applied.
func (c *Client) AnswerChallenge(ctx context.Context, challr resources.ChallengeResource, response interface{}) (resources.ChallengeResource, error) {
	signedBody, err := c.wrapInJWS(response)
	if err != nil {
		return resources.ChallengeResource{}, err
	}

	resp, err := c.net.PostURL(ctx, challr.URI, signedBody)
	if err != nil {
		return resources.ChallengeResource{}, err
	}
	if err := c.checkResponse(resp, acme.JSON_CONTENT_TYPE); err != nil {
		return resources.ChallengeResource{}, err
	}

	if loc := resp.Response.Header.Get(acme.LOCATION_HEADER); loc != challr.URI {
		return resources.ChallengeResource{}, &UnexpectedUpdateError{
			Resource: loc,
			Reason: fmt.Sprintf("challenge location moved from %q to %q",
				challr.URI, loc),
		}
	}

	var body messages.Challenge
	if err := json.Unmarshal(resp.RespBody, &body); err != nil {
		return resources.ChallengeResource{}, acmenet.NewTransportError(resp, err)
	}

	return challr.WithBody(body), nil
}

// AnswerChallenges answers multiple challenges pairwise. The two slices
// must have equal length.
func (c *Client) AnswerChallenges(ctx context.Context, challrs []resources.ChallengeResource, responses []interface{}) ([]resources.ChallengeResource, error) {
	if len(challrs) != len(responses) {
		return nil, fmt.Errorf("got %d challenges but %d responses", len(challrs), len(responses))
	}

	updated := make([]resources.ChallengeResource, 0, len(challrs))
	for i, challr := range challrs {
		updatedChallr, err := c.AnswerChallenge(ctx, challr, responses[i])
		if err != nil {
			return nil, err
		}
		updated = append(updated, updatedChallr)
	}
	return updated, nil
}
