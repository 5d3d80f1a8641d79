package client

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
)

// CSR produces a DER encoded certificate signing request for the provided
// commonName and SAN names, signed with the given key. The key must not be
// the account key. If no commonName is provided the first of the names is
// used. The PEM encoding is returned alongside for callers that persist the
// request.
func CSR(commonName string, names []string, key crypto.Signer) ([]byte, string, error) {
	if len(names) == 0 {
		return nil, "", fmt.Errorf("no names specified")
	}

	if commonName == "" {
		commonName = names[0]
	}

	template := x509.CertificateRequest{
		Subject: pkix.Name{
			CommonName: commonName,
		},
		DNSNames: names,
	}

	csrBytes, err := x509.CreateCertificateRequest(rand.Reader, &template, key)
	if err != nil {
		return nil, "", err
	}

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type: "CERTIFICATE REQUEST", Bytes: csrBytes,
	})

	return csrBytes, string(pemBytes), nil
}
