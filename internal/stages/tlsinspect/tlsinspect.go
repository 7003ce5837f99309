// Package tlsinspect reads the certificate served on TLS ports and assigns
// it a coarse trust grade.
package tlsinspect

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"strconv"
	"strings"
	"time"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/logx"
)

const (
	// DefaultTimeout bounds dial plus handshake.
	DefaultTimeout = 5 * time.Second

	timeLayout = time.RFC3339
)

// DefaultPorts are the ports inspected when open.
var DefaultPorts = []int{443, 465, 8443, 993, 995}

// Config configura la inspección.
type Config struct {
	Ports   []int
	Timeout time.Duration
	Roots   *x509.CertPool // nil = raíces del sistema
	Now     func() time.Time
}

// Stage handshakes with each fast-scan target on its TLS ports.
type Stage struct {
	cfg    Config
	logger logx.Logger
}

// New crea el stage.
func New(cfg Config, logger logx.Logger) *Stage {
	if len(cfg.Ports) == 0 {
		cfg.Ports = DefaultPorts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Stage{
		cfg:    cfg,
		logger: logger.With("stage", string(domain.StageSSLScanner)),
	}
}

// Kind implements ports.Stage.
func (s *Stage) Kind() domain.StageKind {
	return domain.StageSSLScanner
}

// Run records one SSLInfo per port that presented a certificate. Targets
// without any certificate get no entry.
func (s *Stage) Run(ctx context.Context, _ []domain.Target, store *domain.ResultStore) (domain.StageResult, error) {
	scan := store.PortScan()
	result := make(domain.TLSResult)

	allowed := make(map[int]bool, len(s.cfg.Ports))
	for _, p := range s.cfg.Ports {
		allowed[p] = true
	}

	for _, target := range scan.Targets() {
		entry := scan[target]
		if entry.Failed() {
			continue
		}

		var infos []domain.SSLInfo
		for _, port := range entry.OpenPorts {
			if !allowed[port] {
				continue
			}
			info, ok := s.inspect(ctx, target, entry.ResolvedIP, port)
			if ok {
				infos = append(infos, info)
			}
		}
		if len(infos) > 0 {
			result[target] = infos
		}
	}

	return result, nil
}

// observation es lo que importa del handshake para calificar.
type observation struct {
	now        time.Time
	notBefore  time.Time
	notAfter   time.Time
	selfSigned bool
	trusted    bool
	version    uint16
	issuerOrg  []string
}

func (s *Stage) inspect(ctx context.Context, target, ip string, port int) (domain.SSLInfo, bool) {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	serverName := ""
	if net.ParseIP(target) == nil {
		serverName = target
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.cfg.Timeout},
		Config: &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: true, //nolint:gosec // la cadena se verifica aparte
		},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		s.logger.Debug("tls handshake failed", "target", target, "addr", addr, "error", err.Error())
		return domain.SSLInfo{}, false
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return domain.SSLInfo{}, false
	}
	leaf := state.PeerCertificates[0]

	obs := observation{
		now:        s.cfg.Now(),
		notBefore:  leaf.NotBefore,
		notAfter:   leaf.NotAfter,
		selfSigned: isSelfSigned(leaf),
		trusted:    s.verify(state.PeerCertificates, serverName),
		version:    state.Version,
		issuerOrg:  leaf.Issuer.Organization,
	}

	info := domain.SSLInfo{
		Host:      target,
		Port:      port,
		Issuer:    leaf.Issuer.String(),
		Subject:   leaf.Subject.String(),
		ValidFrom: leaf.NotBefore.UTC().Format(timeLayout),
		ValidTo:   leaf.NotAfter.UTC().Format(timeLayout),
		Grade:     grade(obs),
	}
	s.logger.Debug("certificate inspected", "target", target, "port", port, "grade", info.Grade, "tls_version", tls.VersionName(state.Version))
	return info, true
}

func (s *Stage) verify(chain []*x509.Certificate, serverName string) bool {
	intermediates := x509.NewCertPool()
	for _, c := range chain[1:] {
		intermediates.AddCert(c)
	}
	_, err := chain[0].Verify(x509.VerifyOptions{
		Roots:         s.cfg.Roots,
		Intermediates: intermediates,
		DNSName:       serverName,
		CurrentTime:   s.cfg.Now(),
	})
	return err == nil
}

func isSelfSigned(c *x509.Certificate) bool {
	if !bytes.Equal(c.RawIssuer, c.RawSubject) {
		return false
	}
	return c.CheckSignatureFrom(c) == nil
}

// grade: F fuera de validez, T autofirmado, C cadena no confiable o TLS < 1.2,
// A emisor Cloudflare o TLS 1.3 con cadena confiable, B el resto.
func grade(o observation) string {
	switch {
	case o.now.Before(o.notBefore) || o.now.After(o.notAfter):
		return "F"
	case o.selfSigned:
		return "T"
	case !o.trusted || o.version < tls.VersionTLS12:
		return "C"
	case issuedByCloudflare(o.issuerOrg) || o.version >= tls.VersionTLS13:
		return "A"
	default:
		return "B"
	}
}

func issuedByCloudflare(orgs []string) bool {
	for _, o := range orgs {
		if strings.Contains(o, "Cloudflare") {
			return true
		}
	}
	return false
}
