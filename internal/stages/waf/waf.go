// Package waf flags targets fronted by a web application firewall or CDN,
// using response header heuristics.
package waf

import (
	"context"
	"net/http"
	"strings"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/stages/common"
	"reconpipe/internal/stages/sniff"
)

// DefaultPorts are the web ports checked, in ascending order.
var DefaultPorts = []int{80, 443, 8080, 8443}

// Scheme elige el esquema de un puerto.
type Scheme interface {
	Resolve(ctx context.Context, host string, port int) (sniff.Protocol, bool)
}

// Stage probes each fast-scan target on its open web ports.
type Stage struct {
	fetcher common.Fetcher
	scheme  Scheme
	ports   []int
	logger  logx.Logger
}

// New crea el stage. ports vacío usa DefaultPorts.
func New(fetcher common.Fetcher, scheme Scheme, ports []int, logger logx.Logger) *Stage {
	if len(ports) == 0 {
		ports = DefaultPorts
	}
	return &Stage{
		fetcher: fetcher,
		scheme:  scheme,
		ports:   domain.NormalizePorts(ports),
		logger:  logger.With("stage", string(domain.StageWAFDetector)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageWAFDetector
}

// Run emits one verdict per successfully scanned target. The first header
// match across its ports wins; request errors just mean no evidence.
func (s *Stage) Run(ctx context.Context, _ []domain.Target, store *domain.ResultStore) (domain.StageResult, error) {
	scan := store.PortScan()
	result := make(domain.WAFResult, len(scan))

	for _, target := range scan.Targets() {
		entry := scan[target]
		if entry.Failed() {
			continue
		}

		verdict := domain.WAFEntry{}
		for _, port := range s.ports {
			if !entry.HasPort(port) {
				continue
			}
			proto, ok := s.scheme.Resolve(ctx, entry.ResolvedIP, port)
			if !ok {
				continue
			}
			url := common.URL(string(proto), target, port)

			resp, err := s.fetcher.Get(ctx, url, nil)
			if err != nil {
				s.logger.Debug("waf probe failed", "url", url, "error", err.Error())
				continue
			}
			if name, found := Detect(resp.Header, resp.Cookies); found {
				verdict = domain.WAFEntry{WAFDetected: true, WAFDetails: name}
				s.logger.Info("waf detected", "target", target, "url", url, "waf", name)
				break
			}
		}
		result[target] = verdict
	}

	return result, nil
}

// Detect applies the header heuristics, most specific first.
func Detect(header http.Header, cookies []*http.Cookie) (string, bool) {
	server := strings.ToLower(header.Get("Server"))

	switch {
	case strings.Contains(server, "cloudflare"), header.Get("Cf-Ray") != "":
		return "Cloudflare", true
	case strings.Contains(server, "akamai"):
		return "Akamai", true
	case header.Get("X-Sucuri-Id") != "":
		return "Sucuri", true
	case header.Get("X-Iinfo") != "", hasCookiePrefix(cookies, "incap_ses"), hasCookiePrefix(cookies, "visid_incap"):
		return "Imperva Incapsula", true
	case header.Get("X-Amz-Cf-Id") != "":
		return "Amazon CloudFront", true
	}
	return "", false
}

func hasCookiePrefix(cookies []*http.Cookie, prefix string) bool {
	for _, c := range cookies {
		if strings.HasPrefix(strings.ToLower(c.Name), prefix) {
			return true
		}
	}
	return false
}
