// internal/stages/dnsanalysis/dnsanalysis.go
package dnsanalysis

import (
	"context"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/stages/common"
)

// Lookup resuelve los tipos de registro que analiza el stage.
// *dnsx.Client lo implementa.
type Lookup interface {
	MX(ctx context.Context, name string) ([]string, error)
	NS(ctx context.Context, name string) ([]string, error)
	TXT(ctx context.Context, name string) ([]string, error)
}

// Config selecciona los tipos de registro a consultar.
type Config struct {
	CheckMX  bool
	CheckNS  bool
	CheckTXT bool
}

// Stage collects MX/NS/TXT records for hostname targets and their subdomains.
type Stage struct {
	cfg    Config
	lookup Lookup
	logger logx.Logger
}

// New crea el stage.
func New(cfg Config, lookup Lookup, logger logx.Logger) *Stage {
	return &Stage{
		cfg:    cfg,
		lookup: lookup,
		logger: logger.With("stage", string(domain.StageDNSAnalysis)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageDNSAnalysis
}

type check struct {
	record domain.DNSRecordType
	query  func(context.Context, string) ([]string, error)
}

func (s *Stage) checks() []check {
	var out []check
	if s.cfg.CheckMX {
		out = append(out, check{domain.RecordMX, s.lookup.MX})
	}
	if s.cfg.CheckNS {
		out = append(out, check{domain.RecordNS, s.lookup.NS})
	}
	if s.cfg.CheckTXT {
		out = append(out, check{domain.RecordTXT, s.lookup.TXT})
	}
	return out
}

// Run gives every domain an entry holding exactly the enabled record types.
// A failed query records an empty list for that type.
func (s *Stage) Run(ctx context.Context, targets []domain.Target, store *domain.ResultStore) (domain.StageResult, error) {
	var subdomains domain.SubdomainResult
	if store != nil {
		subdomains = store.Subdomains()
	}

	checks := s.checks()
	result := make(domain.DNSResult)

	for _, name := range Domains(targets, subdomains) {
		records := make(domain.DNSRecords, len(checks))
		for _, c := range checks {
			values, err := c.query(ctx, name)
			if err != nil {
				s.logger.Debug("dns query failed", "domain", name, "type", string(c.record), "error", err.Error())
				values = nil
			}
			records[c.record] = append([]string{}, values...)
		}
		result[name] = records
	}

	s.logger.Info("dns analysis completed", "domains", len(result))
	return result, nil
}

// Domains expande los targets con sus subdominios y descarta los literales IP.
func Domains(targets []domain.Target, subdomains domain.SubdomainResult) []string {
	var out []string
	for _, name := range common.Expand(targets, subdomains) {
		if domain.Classify(name) == domain.KindIPLiteral {
			continue
		}
		out = append(out, name)
	}
	return out
}
