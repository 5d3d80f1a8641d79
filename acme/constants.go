// Package acme provides constants shared by the ACME v02 protocol packages.
package acme

const (
	// Content type constants
	// See https://tools.ietf.org/html/draft-barnes-acme-04#section-6

	// DER_CONTENT_TYPE is the Content-Type for DER encoded certificates
	// returned by the new-cert and cert endpoints.
	DER_CONTENT_TYPE = "application/pkix-cert"
	// JSON_CONTENT_TYPE is the Content-Type for JSON protocol resources.
	JSON_CONTENT_TYPE = "application/json"
	// JSON_ERROR_CONTENT_TYPE is the Content-Type for protocol problem
	// documents. Many servers declare plain "application/json" instead, see
	// the response checking code for how that is tolerated.
	JSON_ERROR_CONTENT_TYPE = "application/problem+json"
	// JOSE_CONTENT_TYPE is the Content-Type for signed request envelopes.
	JOSE_CONTENT_TYPE = "application/jose+json"

	// LOCATION_HEADER carries a resource's identity URI.
	LOCATION_HEADER = "Location"
	// LINK_HEADER carries RFC 5988 relations between resources.
	LINK_HEADER = "Link"
	// RETRY_AFTER_HEADER is the server's retry directive for polled
	// resources. The value is either an integer number of seconds or an
	// HTTP date.
	RETRY_AFTER_HEADER = "Retry-After"
	// ACCEPT_HEADER is set by the client on certificate fetch/request to ask
	// for the DER content type.
	ACCEPT_HEADER = "Accept"

	// LINK_NEXT is the link relation pointing at the next resource in the
	// issuance sequence (new-reg -> new-authz -> new-cert).
	LINK_NEXT = "next"
	// LINK_UP is the link relation pointing at a certificate's issuer chain.
	LINK_UP = "up"
	// LINK_TERMS is the link relation pointing at the CA's current terms of
	// service document.
	LINK_TERMS = "terms-of-service"
)

// Authorization and challenge status values.
const (
	StatusUnknown    = "unknown"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusValid      = "valid"
	StatusInvalid    = "invalid"
	StatusRevoked    = "revoked"
)

// Identifier types. In practice v02 servers only support DNS identifiers.
const (
	IdentifierDNS = "dns"
)
