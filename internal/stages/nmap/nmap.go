// internal/stages/nmap/nmap.go
package nmap

import (
	"context"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/execx"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/platform/validator"
	"reconpipe/internal/stages/common"
)

// Config configura el escaneo profundo.
type Config struct {
	Binary    string
	Ports     string
	Arguments []string
}

// Stage runs nmap against the original targets, once per distinct IP.
type Stage struct {
	cfg      Config
	runner   execx.Runner
	resolver common.Resolver
	logger   logx.Logger
}

// New crea el stage.
func New(cfg Config, runner execx.Runner, resolver common.Resolver, logger logx.Logger) *Stage {
	if cfg.Binary == "" {
		cfg.Binary = "nmap"
	}
	if cfg.Ports == "" {
		cfg.Ports = "1-1000"
	}
	if cfg.Arguments == nil {
		cfg.Arguments = []string{"-sV", "--open"}
	}
	return &Stage{
		cfg:      cfg,
		runner:   runner,
		resolver: resolver,
		logger:   logger.With("stage", string(domain.StageNmapScanner)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageNmapScanner
}

// Run scans each original target. Targets resolving to an IP already scanned
// in this run are skipped; unresolvable targets get no entry.
func (s *Stage) Run(ctx context.Context, targets []domain.Target, _ *domain.ResultStore) (domain.StageResult, error) {
	result := make(domain.ServiceScanResult, len(targets))
	scanned := make(map[string]bool)

	for _, t := range targets {
		if !validator.IsSafeArgument(t.Value) {
			s.logger.Warn("unsafe target rejected", "target", t.Value)
			result[t.Value] = domain.ServiceScanEntry{Error: "unsafe target"}
			continue
		}

		ip, err := s.resolver.ResolveIPv4(ctx, t.Value)
		if err != nil {
			s.logger.Debug("target not resolvable, skipping", "target", t.Value, "error", err.Error())
			continue
		}
		if scanned[ip] {
			s.logger.Debug("ip already scanned, skipping", "target", t.Value, "ip", ip)
			continue
		}
		scanned[ip] = true

		result[t.Value] = s.scan(ctx, ip)
	}

	return result, nil
}

func (s *Stage) scan(ctx context.Context, ip string) domain.ServiceScanEntry {
	var out execx.BufferCollector
	if _, err := s.runner.Run(ctx, s.cfg.Binary, s.args(ip), &out); err != nil {
		s.logger.Warn("nmap failed", "ip", ip, "error", err.Error())
		return domain.ServiceScanEntry{Error: err.Error()}
	}

	entry, err := ParseXML(&out, ip)
	if err != nil {
		s.logger.Warn("nmap output unparseable", "ip", ip, "error", err.Error())
		return domain.ServiceScanEntry{Error: err.Error()}
	}

	s.logger.Debug("host scanned", "ip", ip, "status", entry.Status, "ports", len(entry.Ports))
	return entry
}

// args: nmap [arguments...] -p <ports> -oX - <ip>
func (s *Stage) args(ip string) []string {
	args := append([]string(nil), s.cfg.Arguments...)
	return append(args, "-p", s.cfg.Ports, "-oX", "-", ip)
}
