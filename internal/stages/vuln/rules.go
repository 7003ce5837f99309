// internal/stages/vuln/rules.go
package vuln

import (
	"context"
	"strings"

	"reconpipe/internal/core/domain"
)

// Rule matches a banner by case-insensitive substring.
type Rule struct {
	Contains      string
	Vulnerability domain.Vulnerability
}

// DefaultRules son las reglas incorporadas. La primera es genérica para
// cualquier Apache; las demás apuntan a versiones concretas.
var DefaultRules = []Rule{
	{"Apache", domain.Vulnerability{CVEID: "CVE-2021-XXXX", Description: "Apache XX Vulnerability", Severity: domain.SeverityHigh}},
	{"Apache/2.4.49", domain.Vulnerability{CVEID: "CVE-2021-41773", Description: "Apache HTTP Server 2.4.49 path traversal and file disclosure", Severity: domain.SeverityCritical}},
	{"Apache/2.4.50", domain.Vulnerability{CVEID: "CVE-2021-42013", Description: "Apache HTTP Server 2.4.50 path traversal and remote code execution", Severity: domain.SeverityCritical}},
	{"vsftpd 2.3.4", domain.Vulnerability{CVEID: "CVE-2011-2523", Description: "vsftpd 2.3.4 backdoor command execution", Severity: domain.SeverityCritical}},
	{"OpenSSH 7.2p2", domain.Vulnerability{CVEID: "CVE-2016-6210", Description: "OpenSSH 7.2p2 username enumeration via timing", Severity: domain.SeverityMedium}},
	{"nginx/1.20.0", domain.Vulnerability{CVEID: "CVE-2021-23017", Description: "nginx resolver off-by-one heap write", Severity: domain.SeverityHigh}},
}

// BannerProvider evaluates static rules locally.
type BannerProvider struct {
	rules []Rule
}

// NewBannerProvider crea un proveedor con las reglas dadas. Se descartan
// las reglas sin patrón o con una severidad desconocida.
func NewBannerProvider(rules []Rule) *BannerProvider {
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Contains == "" || !r.Vulnerability.Severity.IsValid() {
			continue
		}
		kept = append(kept, r)
	}
	return &BannerProvider{rules: kept}
}

// Name implements Provider.
func (p *BannerProvider) Name() string {
	return "banner"
}

// Lookup returns every matching rule, each with the banner as evidence.
func (p *BannerProvider) Lookup(_ context.Context, banner string) ([]domain.Vulnerability, error) {
	lower := strings.ToLower(banner)

	var out []domain.Vulnerability
	for _, r := range p.rules {
		if strings.Contains(lower, strings.ToLower(r.Contains)) {
			v := r.Vulnerability
			v.Evidence = banner
			out = append(out, v)
		}
	}
	return out, nil
}
