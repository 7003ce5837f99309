// Package subdomain discovers subdomains of hostname targets, passively via
// subfinder and actively from a wordlist.
package subdomain

import (
	"bufio"
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/execx"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/platform/rate"
	"reconpipe/internal/platform/validator"
)

// Modos de enumeración.
const (
	ModePassive = "passive"
	ModeActive  = "active"
	ModeBoth    = "both"
)

// Config configura la enumeración.
type Config struct {
	Mode          string
	Wordlist      string
	Binary        string
	Args          []string
	Delay         time.Duration // pausa fija entre targets
	ResolveActive bool
}

// NameChecker tells whether a name resolves. *dnsx.Client implements it.
type NameChecker interface {
	Resolves(ctx context.Context, name string) bool
}

// Stage enumerates subdomains per hostname target.
type Stage struct {
	cfg     Config
	runner  execx.Runner
	checker NameChecker
	logger  logx.Logger
}

// New crea el stage. checker sólo se usa con ResolveActive.
func New(cfg Config, runner execx.Runner, checker NameChecker, logger logx.Logger) *Stage {
	switch cfg.Mode {
	case ModePassive, ModeActive, ModeBoth:
	default:
		cfg.Mode = ModePassive
	}
	if cfg.Binary == "" {
		cfg.Binary = "subfinder"
	}
	return &Stage{
		cfg:     cfg,
		runner:  runner,
		checker: checker,
		logger:  logger.With("stage", string(domain.StageSubdomainEnum)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageSubdomainEnum
}

// Run records a sorted, deduplicated list for every hostname target, empty
// included. IP literals are skipped. Targets are paced by a flat delay.
func (s *Stage) Run(ctx context.Context, targets []domain.Target, _ *domain.ResultStore) (domain.StageResult, error) {
	result := make(domain.SubdomainResult)
	pacer := rate.Every(s.cfg.Delay)

	var words []string
	if s.cfg.Mode != ModePassive {
		words = s.loadWordlist()
	}

	for _, t := range targets {
		if t.IsIP() {
			continue
		}
		if _, done := result[t.Value]; done {
			continue
		}
		if err := pacer.Wait(ctx); err != nil {
			s.logger.Warn("subdomain enumeration interrupted", "target", t.Value, "error", err.Error())
			break
		}

		found := make(map[string]struct{})
		if s.cfg.Mode != ModeActive {
			for _, sub := range s.passive(ctx, t.Value) {
				found[sub] = struct{}{}
			}
		}
		if s.cfg.Mode != ModePassive {
			for _, sub := range s.active(ctx, t.Value, words) {
				found[sub] = struct{}{}
			}
		}

		subs := make([]string, 0, len(found))
		for sub := range found {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		result[t.Value] = subs

		s.logger.Info("subdomains enumerated", "target", t.Value, "count", len(subs), "mode", s.cfg.Mode)
	}

	return result, nil
}

// passive: subfinder -d <domain> -silent [args...]. Un fallo = ningún resultado.
func (s *Stage) passive(ctx context.Context, target string) []string {
	if !validator.IsSafeArgument(target) {
		s.logger.Warn("unsafe target rejected", "target", target)
		return nil
	}

	args := append([]string{"-d", target, "-silent"}, s.cfg.Args...)
	lines, err := execx.Lines(ctx, s.runner, s.cfg.Binary, args)
	if err != nil {
		s.logger.Warn("subfinder failed", "target", target, "error", err.Error())
		return nil
	}

	var out []string
	for _, line := range lines {
		host := validator.NormalizeHost(line)
		if !validator.IsDomain(host) {
			s.logger.Debug("skipping malformed subfinder line", "line", line)
			continue
		}
		out = append(out, host)
	}
	return out
}

// active antepone cada palabra al dominio; con ResolveActive sólo quedan
// los nombres que resuelven.
func (s *Stage) active(ctx context.Context, target string, words []string) []string {
	var out []string
	for _, w := range words {
		name := w + "." + target
		if !validator.IsDomain(name) {
			continue
		}
		if s.cfg.ResolveActive && s.checker != nil && !s.checker.Resolves(ctx, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (s *Stage) loadWordlist() []string {
	if s.cfg.Wordlist == "" {
		return nil
	}
	f, err := os.Open(s.cfg.Wordlist)
	if err != nil {
		s.logger.Warn("wordlist not readable", "path", s.cfg.Wordlist, "error", err.Error())
		return nil
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	return words
}
