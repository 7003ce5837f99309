// Package dnsx wraps github.com/miekg/dns for the record lookups done by the
// DNS analysis and active subdomain stages. Every query is bounded.
package dnsx

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
)

const (
	// DefaultTimeout bounds a single query against a single server.
	DefaultTimeout = 3 * time.Second

	// DefaultResolvConf is read for nameservers when none are configured.
	DefaultResolvConf = "/etc/resolv.conf"

	// FallbackServer is used when resolv.conf is unreadable or empty.
	FallbackServer = "8.8.8.8:53"
)

// Config configura el cliente DNS.
type Config struct {
	Timeout    time.Duration
	Servers    []string // host:port; vacío = resolv.conf
	ResolvConf string
}

// Client performs MX/NS/TXT/A queries, trying each server in order.
type Client struct {
	client  *dns.Client
	servers []string
	logger  logx.Logger
}

// New crea un cliente. Los servidores se resuelven una sola vez aquí.
func New(cfg Config, logger logx.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ResolvConf == "" {
		cfg.ResolvConf = DefaultResolvConf
	}
	servers := cfg.Servers
	if len(servers) == 0 {
		servers = systemServers(cfg.ResolvConf)
	}

	return &Client{
		client: &dns.Client{
			Net:     "udp",
			Timeout: cfg.Timeout,
		},
		servers: servers,
		logger:  logger.With("component", "dnsx"),
	}
}

func systemServers(path string) []string {
	conf, err := dns.ClientConfigFromFile(path)
	if err != nil || len(conf.Servers) == 0 {
		return []string{FallbackServer}
	}
	out := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		out = append(out, net.JoinHostPort(s, conf.Port))
	}
	return out
}

// Servers devuelve los servidores en uso.
func (c *Client) Servers() []string {
	return append([]string(nil), c.servers...)
}

// Query sends one question and returns the answer section of the first server
// that replies. NXDOMAIN and empty answers are not errors.
func (c *Client) Query(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	var lastErr error
	for _, server := range c.servers {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(errors.ErrTimeout, "dns %s %s: %v", dns.TypeToString[qtype], name, err)
		}

		qctx, cancel := context.WithTimeout(ctx, c.client.Timeout)
		r, _, err := c.client.ExchangeContext(qctx, m, server)
		cancel()
		if err != nil {
			lastErr = err
			c.logger.Debug("dns query failed", "name", name, "type", dns.TypeToString[qtype], "server", server, "error", err.Error())
			continue
		}
		if r.Rcode != dns.RcodeSuccess && r.Rcode != dns.RcodeNameError {
			lastErr = fmt.Errorf("rcode %s", dns.RcodeToString[r.Rcode])
			continue
		}
		return r.Answer, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no servers configured")
	}
	if errors.IsTimeout(lastErr) {
		return nil, errors.Wrapf(errors.ErrTimeout, "dns %s %s: %v", dns.TypeToString[qtype], name, lastErr)
	}
	return nil, errors.Wrapf(errors.ErrNetwork, "dns %s %s: %v", dns.TypeToString[qtype], name, lastErr)
}

// MX devuelve "pref host." por registro.
func (c *Client) MX(ctx context.Context, name string) ([]string, error) {
	answers, err := c.Query(ctx, name, dns.TypeMX)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rr := range answers {
		if mx, ok := rr.(*dns.MX); ok {
			out = append(out, fmt.Sprintf("%d %s", mx.Preference, mx.Mx))
		}
	}
	return out, nil
}

// NS devuelve los nameservers.
func (c *Client) NS(ctx context.Context, name string) ([]string, error) {
	answers, err := c.Query(ctx, name, dns.TypeNS)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rr := range answers {
		if ns, ok := rr.(*dns.NS); ok {
			out = append(out, ns.Ns)
		}
	}
	return out, nil
}

// TXT devuelve un valor por registro, con sus cadenas concatenadas.
func (c *Client) TXT(ctx context.Context, name string) ([]string, error) {
	answers, err := c.Query(ctx, name, dns.TypeTXT)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rr := range answers {
		if txt, ok := rr.(*dns.TXT); ok {
			out = append(out, strings.Join(txt.Txt, ""))
		}
	}
	return out, nil
}

// A devuelve las direcciones IPv4 de name.
func (c *Client) A(ctx context.Context, name string) ([]string, error) {
	answers, err := c.Query(ctx, name, dns.TypeA)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rr := range answers {
		if a, ok := rr.(*dns.A); ok {
			out = append(out, a.A.String())
		}
	}
	return out, nil
}

// Resolves reports whether name has at least one A record.
func (c *Client) Resolves(ctx context.Context, name string) bool {
	ips, err := c.A(ctx, name)
	return err == nil && len(ips) > 0
}
