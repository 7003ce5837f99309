// Package sniff decides whether a TCP service speaks plain HTTP or HTTPS by
// attempting bounded handshakes.
package sniff

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reconpipe/internal/platform/cache"
	"reconpipe/internal/platform/logx"
)

// DefaultTimeout bounds each probe (dial plus exchange).
const DefaultTimeout = 2 * time.Second

// Protocol is a web scheme.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

// httpsRejections son cuerpos conocidos de servidores TLS que reciben HTTP plano.
var httpsRejections = []string{
	"sent an http request to an https server",
	"plain http request was sent to https port",
	"speaking plain http to an ssl-enabled server",
	"this combination of host and port requires tls",
}

// Sniffer probes host:port for HTTP then TLS.
// Resolve recuerda sus veredictos por host:port, así WAFDetector y
// WebScanner no repiten el sondeo sobre el mismo servicio.
type Sniffer struct {
	timeout time.Duration
	memo    *cache.LRU[verdict]
	logger  logx.Logger
}

type verdict struct {
	proto Protocol
	ok    bool
}

// memoSize limita los servicios recordados.
const memoSize = 4096

// New crea un sniffer; timeout <= 0 usa DefaultTimeout.
func New(timeout time.Duration, logger logx.Logger) *Sniffer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sniffer{
		timeout: timeout,
		memo:    cache.New[verdict](memoSize, 0),
		logger:  logger.With("component", "sniff"),
	}
}

// FastPath returns the assumed protocol for well-known web ports.
func FastPath(port int) (Protocol, bool) {
	switch port {
	case 80, 8080:
		return ProtocolHTTP, true
	case 443, 8443:
		return ProtocolHTTPS, true
	default:
		return "", false
	}
}

// Resolve applies FastPath and otherwise probes with Guess, once per
// host:port. Probes interrupted by ctx are not remembered.
func (s *Sniffer) Resolve(ctx context.Context, host string, port int) (Protocol, bool) {
	if p, ok := FastPath(port); ok {
		return p, true
	}

	key := net.JoinHostPort(host, strconv.Itoa(port))
	if v, hit := s.memo.Get(key); hit {
		return v.proto, v.ok
	}
	proto, ok := s.Guess(ctx, host, port)
	if ctx.Err() == nil {
		s.memo.Set(key, verdict{proto: proto, ok: ok})
	}
	return proto, ok
}

// Guess always probes: a plain "GET / HTTP/1.0" answered with a valid status
// line is http, unless the answer is a TLS server's rejection of plaintext;
// otherwise a completed TLS handshake is https. Any failure means absent.
func (s *Sniffer) Guess(ctx context.Context, host string, port int) (Protocol, bool) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	if s.probeHTTP(ctx, host, addr) {
		s.logger.Debug("protocol detected", "addr", addr, "protocol", ProtocolHTTP)
		return ProtocolHTTP, true
	}
	if s.probeTLS(ctx, host, addr) {
		s.logger.Debug("protocol detected", "addr", addr, "protocol", ProtocolHTTPS)
		return ProtocolHTTPS, true
	}

	s.logger.Debug("no web protocol detected", "addr", addr)
	return "", false
}

func (s *Sniffer) probeHTTP(ctx context.Context, host, addr string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := fmt.Fprintf(conn, "GET / HTTP/1.0\r\nHost: %s\r\n\r\n", host); err != nil {
		return false
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isHTTPSRejection(string(body)) {
			return false
		}
	}
	return true
}

func (s *Sniffer) probeTLS(ctx context.Context, host, addr string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cfg := &tls.Config{InsecureSkipVerify: true} //nolint:gosec // solo detección de protocolo
	if net.ParseIP(host) == nil {
		cfg.ServerName = host
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.timeout},
		Config:    cfg,
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func isHTTPSRejection(body string) bool {
	body = strings.ToLower(body)
	for _, marker := range httpsRejections {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
