package client

import (
	"encoding/json"
	"fmt"
	"mime"

	"github.com/dmfigol/certbot/acme"
	"github.com/dmfigol/certbot/acme/messages"
	acmenet "github.com/dmfigol/certbot/net"
)

// responseContentType returns the media type of a response with any
// parameters (charset and friends) stripped.
func responseContentType(resp *acmenet.NetResponse) string {
	ct := resp.Response.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mediaType
}

// checkResponse classifies a raw server response. It returns nil when the
// response can be handed on for reconciliation, a *messages.Error when the
// server declared a well-formed problem document, and a *net.TransportError
// for everything else.
//
// Checking is deliberately not strict about Content-Type: a wrong declared
// type is tolerated (and logged) whenever the body nonetheless parses as
// JSON, because real-world servers are inconsistent about declaring
// "application/problem+json" (c.f. Boulder #56). StrictContentType in the
// ClientConfig restores strict matching.
func (c *Client) checkResponse(resp *acmenet.NetResponse, contentType string) error {
	respCT := responseContentType(resp)

	var jobj interface{}
	parsed := json.Unmarshal(resp.RespBody, &jobj) == nil

	statusCode := resp.Response.StatusCode
	if statusCode >= 400 {
		if !parsed {
			return acmenet.NewTransportError(resp, fmt.Errorf(
				"server returned HTTP %d with an unparseable body", statusCode))
		}

		if respCT != acme.JSON_ERROR_CONTENT_TYPE {
			c.log.Debugw("ignoring wrong Content-Type for JSON error",
				"contentType", respCT)
		}

		var prob messages.Error
		if err := json.Unmarshal(resp.RespBody, &prob); err != nil || !prob.Valid() {
			return acmenet.NewTransportError(resp, fmt.Errorf(
				"server returned HTTP %d with a body that is not a problem document",
				statusCode))
		}
		if prob.Status == 0 {
			prob.Status = statusCode
		}
		return &prob
	}

	if parsed && respCT != acme.JSON_CONTENT_TYPE && respCT != acme.JSON_ERROR_CONTENT_TYPE {
		c.log.Debugw("ignoring wrong Content-Type for JSON decodable response",
			"contentType", respCT)
	}

	if contentType != "" && respCT != contentType && contentType != acme.JSON_CONTENT_TYPE {
		if !parsed || c.strictContentType {
			return acmenet.NewTransportError(resp, fmt.Errorf(
				"unexpected response Content-Type: %q, expected %q", respCT, contentType))
		}
		c.log.Debugw("tolerating unexpected Content-Type for JSON decodable response",
			"contentType", respCT, "expected", contentType)
	}

	return nil
}
