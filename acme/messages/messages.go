// Package messages defines the JSON bodies exchanged with an ACME v02
// server. Every type in this package round-trips through encoding/json; the
// client core treats them as opaque serializable payloads.
package messages

import (
	jose "github.com/go-jose/go-jose/v4"

	"github.com/dmfigol/certbot/acme"
)

// An Identifier names the subject (in practice, a DNS name) that an
// Authorization proves control of.
type Identifier struct {
	// The Type of the Identifier value. See acme.IdentifierDNS.
	Type string `json:"type"`
	// The Identifier value, e.g. a fully qualified domain name.
	Value string `json:"value"`
}

// Equals returns true if the other Identifier has the same type and value.
func (ident Identifier) Equals(other Identifier) bool {
	return ident.Type == other.Type && ident.Value == other.Value
}

// Registration is the body of the account registration resource. The Key
// field is populated by the server from the JWS that signed the new-reg
// request and is compared against the client's own account key when
// responses are reconciled.
type Registration struct {
	Key           *jose.JSONWebKey `json:"key,omitempty"`
	Contact       []string         `json:"contact,omitempty"`
	Agreement     string           `json:"agreement,omitempty"`
	RecoveryToken string           `json:"recoveryToken,omitempty"`
}

// ContactsEqual returns true if the Registration's contact list equals the
// given list. A nil list and an empty list are considered equal; servers
// normalize absent contact fields both ways.
func (reg Registration) ContactsEqual(contact []string) bool {
	if len(reg.Contact) != len(contact) {
		return false
	}
	for i, c := range reg.Contact {
		if c != contact[i] {
			return false
		}
	}
	return true
}

// Authorization is the body of an authorization resource: the identifier
// being proven, the account key it is bound to, its status, and the
// challenges the server will accept as proof.
type Authorization struct {
	Identifier Identifier       `json:"identifier"`
	Key        *jose.JSONWebKey `json:"key,omitempty"`
	Status     string           `json:"status,omitempty"`
	Challenges []Challenge      `json:"challenges,omitempty"`
	// Combinations lists the acceptable subsets of Challenges as indexes
	// into the Challenges slice.
	Combinations [][]int `json:"combinations,omitempty"`
	Expires      string  `json:"expires,omitempty"`
}

// Challenge is the body of a single challenge within an authorization. The
// client never interprets challenge contents beyond this envelope; computing
// a challenge response is the caller's concern.
type Challenge struct {
	Type      string `json:"type"`
	Status    string `json:"status,omitempty"`
	URI       string `json:"uri,omitempty"`
	Token     string `json:"token,omitempty"`
	Validated string `json:"validated,omitempty"`
	Error     *Error `json:"error,omitempty"`
}

// ChallengeResponse is a generic challenge response body for the common
// key-authorization based challenge types. Callers with other challenge
// types may POST any JSON serializable value instead.
type ChallengeResponse struct {
	Type             string `json:"type"`
	KeyAuthorization string `json:"keyAuthorization,omitempty"`
	Token            string `json:"token,omitempty"`
}

// CertificateRequest is the body POSTed to the new-cert endpoint once every
// authorization is valid. Authorizations holds the location URIs of the
// original authorization resources, CSR the base64url encoded DER CSR.
type CertificateRequest struct {
	CSR            string   `json:"csr"`
	Authorizations []string `json:"authorizations"`
}

// RevocationNow is the When directive requesting immediate revocation.
const RevocationNow = "now"

// Revocation is the body POSTed to a certificate's own URI to request
// revocation. When is either RevocationNow or an RFC 3339 timestamp.
type Revocation struct {
	Revoke         string   `json:"revoke"`
	Authorizations []string `json:"authorizations"`
}

// Error is a server problem document, used verbatim as the protocol error
// surfaced to callers.
type Error struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
	Status int    `json:"status,omitempty"`
}

// Error makes *Error usable as a Go error.
func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Type
	}
	return e.Type + " :: " + e.Detail
}

// Valid reports whether the document carries enough structure to be treated
// as a protocol error. A JSON object with neither a type nor a detail is
// some other body that happened to unmarshal cleanly.
func (e *Error) Valid() bool {
	return e.Type != "" || e.Detail != ""
}

// NewAuthorization builds the new-authz request body for an identifier.
func NewAuthorization(ident Identifier) Authorization {
	return Authorization{Identifier: ident}
}

// DNSIdentifier builds a DNS type Identifier for the given domain.
func DNSIdentifier(domain string) Identifier {
	return Identifier{Type: acme.IdentifierDNS, Value: domain}
}
