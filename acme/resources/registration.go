// Package resources defines client-side snapshots of server-tracked ACME
// v02 resources. A resource couples a wire body with the URIs the server
// assigned to it. Snapshots are immutable: "updating" a resource means
// building a new value with WithBody, never mutating in place.
package resources

import (
	"github.com/dmfigol/certbot/acme/messages"
)

// RegistrationResource is the account registration resource. Its identity is
// the URI the server assigned in the new-reg response's Location header.
type RegistrationResource struct {
	// The registration body as last returned by the server.
	Body messages.Registration
	// The server-assigned location URI identifying the registration.
	URI string
	// The URI for requesting new authorizations, from the new-reg
	// response's "next" link.
	NewAuthzURI string
	// The URI of the CA's terms of service document, from the
	// "terms-of-service" link. Empty if the server advertised none.
	TermsOfService string
}

// WithBody returns a copy of the resource carrying the given body. All URI
// fields are preserved.
func (regr RegistrationResource) WithBody(body messages.Registration) RegistrationResource {
	updated := regr
	updated.Body = body
	return updated
}
