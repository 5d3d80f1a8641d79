package client

import (
	"strings"

	acmenet "github.com/dmfigol/certbot/net"
)

// linkHeader extracts the first URI carried by a Link header with the given
// relation type. Returns an empty string when no matching relation exists.
//
// Link headers look like:
//
//	Link: <https://ca.example/acme/new-authz>;rel="next"
func linkHeader(resp *acmenet.NetResponse, rel string) string {
	for _, header := range resp.Response.Header["Link"] {
		for _, link := range strings.Split(header, ",") {
			parts := strings.Split(strings.TrimSpace(link), ";")
			if len(parts) < 2 {
				continue
			}
			uri := strings.TrimSpace(parts[0])
			if !strings.HasPrefix(uri, "<") || !strings.HasSuffix(uri, ">") {
				continue
			}
			for _, param := range parts[1:] {
				param = strings.TrimSpace(param)
				if param == `rel="`+rel+`"` || param == "rel="+rel {
					return strings.Trim(uri, "<>")
				}
			}
		}
	}
	return ""
}
