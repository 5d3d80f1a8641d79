package client

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/resources"
	acmenet "github.com/dmfigol/certbot/net"
)

// getCert GETs a DER certificate from the given URI with an Accept header
// for the DER content type. The body must parse as a certificate.
func (c *Client) getCert(ctx context.Context, uri string) (*acmenet.NetResponse, []byte, error) {
	req, err := c.net.GetRequest(ctx, uri)
	if err != nil {
		return nil, nil, acmenet.NewTransportError(nil, err)
	}
	req.Header.Set(acme.ACCEPT_HEADER, acme.DER_CONTENT_TYPE)

	resp, err := c.net.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if err := c.checkResponse(resp, acme.DER_CONTENT_TYPE); err != nil {
		return nil, nil, err
	}

	if _, err := x509.ParseCertificate(resp.RespBody); err != nil {
		return nil, nil, acmenet.NewTransportError(resp, fmt.Errorf(
			"response body is not a DER certificate: %s", err))
	}

	return resp, resp.RespBody, nil
}

// CheckCert re-fetches a certificate from its own location and returns
// a new snapshot carrying the refreshed bytes. A response whose Location
// differs from the stored one is an *UnexpectedUpdateError; an absent
// Location is tolerated.
func (c *Client) CheckCert(ctx context.Context, certr resources.CertificateResource) (resources.CertificateResource, error) {
	if certr.URI == "" {
		return resources.CertificateResource{}, errors.New("checkCert: certificate has no location URI")
	}

	resp, der, err := c.getCert(ctx, certr.URI)
	if err != nil {
		return resources.CertificateResource{}, err
	}

	if loc := resp.Response.Header.Get(acme.LOCATION_HEADER); loc != "" && loc != certr.URI {
		return resources.CertificateResource{}, &UnexpectedUpdateError{
			Resource: loc,
			Reason: fmt.Sprintf("certificate location moved from %q to %q",
				certr.URI, loc),
		}
	}

	return certr.WithBody(der), nil
}

// Refresh refreshes a certificate. It is an alias for CheckCert.
func (c *Client) Refresh(ctx context.Context, certr resources.CertificateResource) (resources.CertificateResource, error) {
	return c.CheckCert(ctx, certr)
}

// FetchChain fetches the issuer certificate chain for a certificate from
// its "up" link and returns the DER bytes.
func (c *Client) FetchChain(ctx context.Context, certr resources.CertificateResource) ([]byte, error) {
	if certr.CertChainURI == "" {
		return nil, errors.New("fetchChain: certificate has no chain URI")
	}

	_, der, err := c.getCert(ctx, certr.CertChainURI)
	return der, err
}
