// internal/stages/common/fetch.go
package common

import (
	"context"
	"net"
	"strconv"

	"reconpipe/internal/platform/httpclient"
)

// Fetcher performs one GET. *httpclient.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) (*httpclient.Response, error)
}

// URL builds <scheme>://<host>:<port>, always with an explicit port.
func URL(scheme, host string, port int) string {
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))
}
