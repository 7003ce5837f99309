// Package breach checks role addresses of each target domain against a
// credential-breach provider.
package breach

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/platform/validator"
)

// RoleMailboxes are the local parts tried for every domain.
var RoleMailboxes = []string{"admin", "info", "hr"}

// Provider reports the breaches an address appears in.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, email string) ([]domain.BreachRecord, error)
}

// NewProvider resuelve el proveedor por nombre. Ambos proveedores son
// locales y no necesitan credenciales.
func NewProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return noneProvider{}, nil
	case "static":
		return staticProvider{}, nil
	default:
		return nil, fmt.Errorf("%w: breach provider %q", domain.ErrUnknownProvider, name)
	}
}

// noneProvider nunca encuentra nada.
type noneProvider struct{}

func (noneProvider) Name() string { return "none" }
func (noneProvider) Lookup(context.Context, string) ([]domain.BreachRecord, error) {
	return nil, nil
}

// staticProvider marca como filtrada toda dirección admin@.
type staticProvider struct{}

func (staticProvider) Name() string { return "static" }
func (staticProvider) Lookup(_ context.Context, email string) ([]domain.BreachRecord, error) {
	if !strings.HasPrefix(email, "admin@") {
		return nil, nil
	}
	return []domain.BreachRecord{{
		Email:       email,
		BreachName:  "DummyBreach",
		Date:        "2022-01-01",
		ExposedData: "Password123",
	}}, nil
}

// Stage generates candidate addresses for hostname targets and looks them up.
type Stage struct {
	provider    Provider
	providerErr error
	logger      logx.Logger
}

// New crea el stage. Un proveedor desconocido hace fallar Run.
func New(providerName string, logger logx.Logger) *Stage {
	p, err := NewProvider(providerName)
	return NewWithProvider(p, err, logger)
}

// NewWithProvider permite inyectar un proveedor concreto.
func NewWithProvider(p Provider, err error, logger logx.Logger) *Stage {
	return &Stage{
		provider:    p,
		providerErr: err,
		logger:      logger.With("stage", string(domain.StageBreachLookup)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageBreachLookup
}

// Run skips IP targets; addresses without findings get no key.
func (s *Stage) Run(ctx context.Context, targets []domain.Target, _ *domain.ResultStore) (domain.StageResult, error) {
	if s.providerErr != nil {
		return nil, s.providerErr
	}

	result := make(domain.BreachResult)
	for _, t := range targets {
		if t.IsIP() {
			continue
		}
		for _, email := range CandidateEmails(t.Value) {
			if _, done := result[email]; done {
				continue
			}
			records, err := s.provider.Lookup(ctx, email)
			if err != nil {
				s.logger.Warn("breach lookup failed", "email", email, "provider", s.provider.Name(), "error", err.Error())
				continue
			}
			if len(records) > 0 {
				result[email] = records
				s.logger.Info("breach records found", "email", email, "count", len(records))
			}
		}
	}

	if len(result) > 0 {
		s.logger.Info("breached addresses", "provider", s.provider.Name(), "emails", Emails(result))
	}
	return result, nil
}

// CandidateEmails builds the role addresses for host and, when different,
// for its registrable domain (www.example.co.uk -> example.co.uk). Hosts that
// cannot form a mail address (localhost, _dmarc labels) contribute nothing.
func CandidateEmails(host string) []string {
	host = validator.NormalizeHost(host)
	if !validator.IsDomain(host) {
		return nil
	}

	domains := []string{host}
	if apex, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil && apex != host {
		domains = append(domains, apex)
	}

	var out []string
	for _, d := range domains {
		for _, box := range RoleMailboxes {
			if email := box + "@" + d; validator.IsEmail(email) {
				out = append(out, email)
			}
		}
	}
	return out
}

// Emails devuelve las claves de r ordenadas.
func Emails(r domain.BreachResult) []string {
	out := make([]string, 0, len(r))
	for e := range r {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
