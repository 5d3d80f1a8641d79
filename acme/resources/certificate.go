package resources

// CertificateResource is an issued certificate. It is created only after
// every originating authorization reached the valid status.
type CertificateResource struct {
	// The DER encoded certificate bytes.
	Body []byte
	// The server-assigned location URI identifying the certificate. Empty
	// for servers that return the certificate inline without a Location.
	URI string
	// The authorization resources the certificate was issued from, in the
	// order they were passed to the issuance request. These are the
	// original snapshots, identified by their original URIs.
	Authzrs []AuthorizationResource
	// The URI of the issuer certificate chain, from the new-cert response's
	// "up" link.
	CertChainURI string
}

// WithBody returns a copy of the resource carrying the given DER bytes.
func (certr CertificateResource) WithBody(der []byte) CertificateResource {
	updated := certr
	updated.Body = der
	return updated
}
