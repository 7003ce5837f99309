// internal/stages/common/resolve.go
package common

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/cache"
	"reconpipe/internal/platform/errors"
)

// ResolveTimeout bounds a single hostname resolution.
const ResolveTimeout = 3 * time.Second

// Resolver maps a target to one IPv4 address.
type Resolver interface {
	ResolveIPv4(ctx context.Context, host string) (string, error)
}

// NetResolver resolves through the system resolver, so /etc/hosts applies.
type NetResolver struct {
	Timeout time.Duration
}

// NewNetResolver crea un resolver con el timeout por defecto.
func NewNetResolver() *NetResolver {
	return &NetResolver{Timeout: ResolveTimeout}
}

// ResolveIPv4 returns the dotted form of IPv4 literals ("010.0.0.1" gives
// "10.0.0.1") and otherwise the first IPv4 address the system resolver reports.
func (r *NetResolver) ResolveIPv4(ctx context.Context, host string) (string, error) {
	if domain.Classify(host) == domain.KindIPLiteral {
		return canonicalIPv4(host), nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
		return "", errors.Wrapf(errors.ErrInvalidInput, "%s is not an IPv4 address", host)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = ResolveTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		if errors.IsTimeout(err) {
			return "", errors.Wrapf(errors.ErrTimeout, "resolve %s: %v", host, err)
		}
		return "", errors.Wrapf(errors.ErrNetwork, "resolve %s: %v", host, err)
	}
	for _, a := range addrs {
		if v4 := a.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", errors.Wrapf(errors.ErrNetwork, "resolve %s: no IPv4 address", host)
}

// canonicalIPv4 quita los ceros a la izquierda de un literal ya clasificado.
func canonicalIPv4(literal string) string {
	octets := strings.Split(literal, ".")
	for i, o := range octets {
		n, _ := strconv.Atoi(o)
		octets[i] = strconv.Itoa(n)
	}
	return strings.Join(octets, ".")
}

type resolution struct {
	ip  string
	err error
}

// CachingResolver memoises another Resolver for the life of a run, failures
// included, so the fast and deep scans resolve each name once. Lookups cut
// short by a cancelled context are not remembered.
type CachingResolver struct {
	next  Resolver
	cache *cache.LRU[resolution]
}

// NewCachingResolver envuelve next con un cache de capacity entradas.
func NewCachingResolver(next Resolver, capacity int) *CachingResolver {
	return &CachingResolver{next: next, cache: cache.New[resolution](capacity, 0)}
}

// ResolveIPv4 implements Resolver.
func (r *CachingResolver) ResolveIPv4(ctx context.Context, host string) (string, error) {
	if hit, ok := r.cache.Get(host); ok {
		return hit.ip, hit.err
	}
	ip, err := r.next.ResolveIPv4(ctx, host)
	if ctx.Err() == nil {
		r.cache.Set(host, resolution{ip: ip, err: err})
	}
	return ip, err
}
