package vuln

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"reconpipe/internal/core/domain"
	perrors "reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
)

func TestNewProvider(t *testing.T) {
	for _, name := range []string{"", "banner", "vulners", " Vulners "} {
		p, err := NewProvider(name)
		require.NoError(t, err, name)
		assert.Equal(t, "banner", p.Name())
	}

	_, err := NewProvider("shodan")
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestBannerProvider_Lookup(t *testing.T) {
	p := NewBannerProvider(DefaultRules)

	generic, err := p.Lookup(context.Background(), "Apache/2.4.41 (Ubuntu)")
	require.NoError(t, err)
	require.Len(t, generic, 1)
	assert.Equal(t, domain.Vulnerability{
		CVEID:       "CVE-2021-XXXX",
		Description: "Apache XX Vulnerability",
		Severity:    domain.SeverityHigh,
		Evidence:    "Apache/2.4.41 (Ubuntu)",
	}, generic[0])

	specific, _ := p.Lookup(context.Background(), "Apache/2.4.49")
	assert.Len(t, specific, 2)

	none, _ := p.Lookup(context.Background(), "Microsoft-IIS/10.0")
	assert.Empty(t, none)

	for _, r := range DefaultRules {
		assert.True(t, r.Vulnerability.Severity.IsValid(), r.Vulnerability.CVEID)
	}
}

func TestStage_Run(t *testing.T) {
	store := domain.NewResultStore(nil)
	require.NoError(t, store.Set(domain.StageNmapScanner, domain.ServiceScanResult{
		"example.com": {Status: "up", Ports: []domain.ServicePort{
			{Port: 21, Protocol: "tcp", Service: "ftp", Version: "vsftpd 2.3.4"},
			{Port: 22, Protocol: "tcp", Service: "ssh", Version: "OpenSSH 8.9p1"},
			{Port: 81, Protocol: "tcp", Service: "unknown"},
		}},
		"down.example.com": {Status: "host down"},
	}))
	require.NoError(t, store.Set(domain.StageWebScanner, domain.WebResult{
		"http://example.com:80":   {StatusCode: 200, Server: "Apache/2.4.41"},
		"http://example.com:8080": {StatusCode: 200, Server: "Unknown"},
		"https://example.com:443": {Error: "timeout"},
	}))

	res, err := New("banner", logx.Nop()).Run(context.Background(), nil, store)
	require.NoError(t, err)

	vulns := res.(domain.VulnResult)
	assert.Len(t, vulns, 2)
	assert.Equal(t, "CVE-2021-XXXX", vulns["http://example.com:80"][0].CVEID)
	assert.Equal(t, "CVE-2011-2523", vulns["example.com:21"][0].CVEID)
	assert.NotContains(t, vulns, "example.com:22")
}

func TestStage_UnknownProviderFails(t *testing.T) {
	_, err := New("nessus", logx.Nop()).Run(context.Background(), nil, domain.NewResultStore(nil))

	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Lookup(context.Context, string) ([]domain.Vulnerability, error) {
	return nil, errors.New("rate limited")
}

func TestStage_ProviderErrorIsNoData(t *testing.T) {
	store := domain.NewResultStore(nil)
	require.NoError(t, store.Set(domain.StageWebScanner, domain.WebResult{
		"http://example.com:80": {StatusCode: 200, Server: "Apache"},
	}))

	res, err := NewWithProvider(failingProvider{}, nil, logx.Nop()).Run(context.Background(), nil, store)

	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
}

type erroringProvider struct{ err error }

func (p erroringProvider) Name() string { return "erroring" }
func (p erroringProvider) Lookup(context.Context, string) ([]domain.Vulnerability, error) {
	return nil, p.err
}

func TestStage_UnreachableProviderOnlyLogsAtDebug(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		warns int
	}{
		{"network", perrors.Wrap(perrors.ErrNetwork, "dial vulners"), 0},
		{"timeout", perrors.Wrap(perrors.ErrTimeout, "vulners"), 0},
		{"other", errors.New("quota exceeded"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := domain.NewResultStore(nil)
			require.NoError(t, store.Set(domain.StageWebScanner, domain.WebResult{
				"http://example.com:80": {StatusCode: 200, Server: "Apache"},
			}))
			core, logs := observer.New(zapcore.WarnLevel)

			res, err := NewWithProvider(erroringProvider{tt.err}, nil, logx.NewWithCore(core)).Run(context.Background(), nil, store)

			require.NoError(t, err)
			assert.True(t, res.IsEmpty())
			assert.Equal(t, tt.warns, logs.Len())
		})
	}
}

func TestNewBannerProvider_SkipsMalformedRules(t *testing.T) {
	p := NewBannerProvider([]Rule{
		{"", domain.Vulnerability{CVEID: "CVE-0000-0001", Severity: domain.SeverityLow}},
		{"nginx", domain.Vulnerability{CVEID: "CVE-0000-0002", Severity: "Severe"}},
		{"nginx", domain.Vulnerability{CVEID: "CVE-0000-0003", Severity: domain.SeverityHigh}},
	})

	vulns, err := p.Lookup(context.Background(), "nginx/1.25.0")

	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Equal(t, "CVE-0000-0003", vulns[0].CVEID)
}
