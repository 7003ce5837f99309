// internal/stages/masscan/masscan.go
package masscan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/execx"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/platform/validator"
	"reconpipe/internal/stages/common"
)

// Config configura el escaneo rápido.
type Config struct {
	Binary         string
	Ports          string
	Rate           int
	AdditionalArgs []string
	OutputFile     string // sólo el nombre base; se escribe en un directorio temporal por ejecución
}

// Stage runs masscan once per distinct resolved IP over the expanded targets.
type Stage struct {
	cfg      Config
	runner   execx.Runner
	resolver common.Resolver
	logger   logx.Logger
}

// New crea el stage.
func New(cfg Config, runner execx.Runner, resolver common.Resolver, logger logx.Logger) *Stage {
	if cfg.Binary == "" {
		cfg.Binary = "masscan"
	}
	if cfg.Ports == "" {
		cfg.Ports = "1-1000"
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 100
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "masscan_results.txt"
	}
	return &Stage{
		cfg:      cfg,
		runner:   runner,
		resolver: resolver,
		logger:   logger.With("stage", string(domain.StageMasscanScanner)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageMasscanScanner
}

// Run scans every expanded target. Each target gets its own entry even when
// it shares a resolved IP with an earlier one.
func (s *Stage) Run(ctx context.Context, targets []domain.Target, store *domain.ResultStore) (domain.StageResult, error) {
	expanded := common.Expand(targets, store.Subdomains())

	workDir, err := os.MkdirTemp("", "reconpipe-masscan-")
	if err != nil {
		return nil, fmt.Errorf("create masscan work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	result := make(domain.PortScanResult, len(expanded))
	cache := make(map[string][]int) // IP -> puertos abiertos
	failed := make(map[string]bool) // IPs cuyo escaneo falló

	for _, target := range expanded {
		if !validator.IsSafeArgument(target) {
			s.logger.Warn("unsafe target rejected", "target", target)
			result[target] = domain.PortScanEntry{Error: "masscan failed for " + target + ": unsafe target"}
			continue
		}

		ip, err := s.resolver.ResolveIPv4(ctx, target)
		if err != nil {
			s.logger.Debug("target not resolvable, skipping", "target", target, "error", err.Error())
			continue
		}

		if failed[ip] {
			result[target] = domain.PortScanEntry{Error: "masscan failed for " + target}
			continue
		}

		ports, cached := cache[ip]
		if !cached {
			ports, err = s.scan(ctx, workDir, ip, len(cache)+len(failed))
			if err != nil {
				s.logger.Warn("masscan failed", "target", target, "ip", ip, "error", err.Error())
				failed[ip] = true
				result[target] = domain.PortScanEntry{Error: "masscan failed for " + target}
				continue
			}
			cache[ip] = ports
		}

		result[target] = domain.NewPortScanEntry(domain.NewHost(ip, target, ports))
		s.logger.Debug("target scanned", "target", target, "ip", ip, "open_ports", len(ports), "cached", cached)
	}

	return result, nil
}

func (s *Stage) scan(ctx context.Context, workDir, ip string, seq int) ([]int, error) {
	outFile := filepath.Join(workDir, strconv.Itoa(seq)+"-"+filepath.Base(s.cfg.OutputFile))

	if _, err := s.runner.Run(ctx, s.cfg.Binary, s.args(ip, outFile), nil); err != nil {
		return nil, err
	}
	return ParseGrepableFile(outFile, ip), nil
}

// args arma el vector: masscan <ip> --rate R -p P [extra...] -oG <file> --open
func (s *Stage) args(ip, outFile string) []string {
	args := []string{ip, "--rate", strconv.Itoa(s.cfg.Rate), "-p", s.cfg.Ports}
	args = append(args, s.cfg.AdditionalArgs...)
	return append(args, "-oG", outFile, "--open")
}
