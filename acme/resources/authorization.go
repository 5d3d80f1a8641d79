package resources

import (
	"github.com/dmfigol/certbot/acme/messages"
)

// AuthorizationResource is a proof-of-control record for one identifier.
// Its identity is the URI from the new-authz response's Location header;
// polling always targets this URI even as the body is refreshed.
type AuthorizationResource struct {
	// The authorization body as last returned by the server. Status
	// transitions happen only through server responses, never locally.
	Body messages.Authorization
	// The server-assigned location URI identifying the authorization.
	URI string
	// The URI for requesting certificate issuance once the authorization is
	// valid, from the response's "next" link.
	NewCertURI string
}

// WithBody returns a copy of the resource carrying the given body. The URI
// and NewCertURI identity fields are preserved.
func (authzr AuthorizationResource) WithBody(body messages.Authorization) AuthorizationResource {
	updated := authzr
	updated.Body = body
	return updated
}

// String returns the authorization's location URI.
func (authzr AuthorizationResource) String() string {
	return authzr.URI
}
