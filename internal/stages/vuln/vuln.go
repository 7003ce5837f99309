// Package vuln maps service banners gathered by earlier stages to known
// vulnerabilities through a pluggable provider.
package vuln

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
)

// Provider looks up vulnerabilities for one banner.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, banner string) ([]domain.Vulnerability, error)
}

// NewProvider resolves a provider by name. "vulners" maps to the built-in
// banner rules; there is no remote database client.
func NewProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "banner", "vulners":
		return NewBannerProvider(DefaultRules), nil
	default:
		return nil, fmt.Errorf("%w: vuln provider %q", domain.ErrUnknownProvider, name)
	}
}

// Stage looks up WebScanner server banners (key = URL) and NmapScanner
// service versions (key = target:port).
type Stage struct {
	provider    Provider
	providerErr error
	logger      logx.Logger
}

// New crea el stage. Un proveedor desconocido hace fallar Run, no la construcción.
func New(providerName string, logger logx.Logger) *Stage {
	p, err := NewProvider(providerName)
	return NewWithProvider(p, err, logger)
}

// NewWithProvider permite inyectar un proveedor concreto.
func NewWithProvider(p Provider, err error, logger logx.Logger) *Stage {
	return &Stage{
		provider:    p,
		providerErr: err,
		logger:      logger.With("stage", string(domain.StageVulnScanner)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageVulnScanner
}

// Run omits keys without findings. Provider errors for a single banner are
// logged and treated as no data.
func (s *Stage) Run(ctx context.Context, _ []domain.Target, store *domain.ResultStore) (domain.StageResult, error) {
	if s.providerErr != nil {
		return nil, s.providerErr
	}

	result := make(domain.VulnResult)

	web := store.WebProbe()
	for _, url := range web.URLs() {
		entry := web[url]
		if entry.Failed() || entry.Server == "" || entry.Server == "Unknown" {
			continue
		}
		s.lookup(ctx, result, url, entry.Server)
	}

	services := store.ServiceScan()
	targets := make([]string, 0, len(services))
	for t := range services {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	for _, target := range targets {
		for _, p := range services[target].Ports {
			if p.Version == "" {
				continue
			}
			s.lookup(ctx, result, target+":"+strconv.Itoa(p.Port), p.Version)
		}
	}

	return result, nil
}

func (s *Stage) lookup(ctx context.Context, result domain.VulnResult, key, banner string) {
	vulns, err := s.provider.Lookup(ctx, banner)
	if err != nil {
		if errors.IsNoData(err) {
			s.logger.Debug("vuln lookup unreachable", "key", key, "provider", s.provider.Name(), "error", err.Error())
		} else {
			s.logger.Warn("vuln lookup failed", "key", key, "provider", s.provider.Name(), "error", err.Error())
		}
		return
	}
	if len(vulns) == 0 {
		return
	}
	result[key] = append(result[key], vulns...)
	s.logger.Info("vulnerabilities found", "key", key, "count", len(vulns))
}
