package resources

import (
	"github.com/dmfigol/certbot/acme/messages"
)

// ChallengeResource is one challenge within an authorization's challenge
// set. Its identity is the challenge URI; answering the challenge POSTs to
// this URI and must not move it.
type ChallengeResource struct {
	// The challenge body as last returned by the server.
	Body messages.Challenge
	// The server-assigned URI identifying the challenge.
	URI string
}

// WithBody returns a copy of the resource carrying the given body.
func (challr ChallengeResource) WithBody(body messages.Challenge) ChallengeResource {
	updated := challr
	updated.Body = body
	return updated
}
