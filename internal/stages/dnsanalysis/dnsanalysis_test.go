package dnsanalysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/dnsx"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/testutil"
)

func newClient(t *testing.T, records ...string) *dnsx.Client {
	t.Helper()
	addr := testutil.StartDNSServer(t, records...)
	return dnsx.New(dnsx.Config{Servers: []string{addr}, Timeout: time.Second}, logx.Nop())
}

func TestStage_AllChecks(t *testing.T) {
	client := newClient(t,
		"example.com. 60 IN MX 10 mx1.example.com.",
		"example.com. 60 IN NS ns1.example.com.",
		`example.com. 60 IN TXT "v=spf1 -all"`,
		"www.example.com. 60 IN A 93.184.216.34",
	)
	store := domain.NewResultStore(domain.NewTargets([]string{"example.com", "10.0.0.1"}))
	require.NoError(t, store.Set(domain.StageSubdomainEnum, domain.SubdomainResult{
		"example.com": {"www.example.com"},
	}))

	s := New(Config{CheckMX: true, CheckNS: true, CheckTXT: true}, client, logx.Nop())
	res, err := s.Run(context.Background(), store.Targets(), store)
	require.NoError(t, err)

	got := res.(domain.DNSResult)
	assert.Equal(t, domain.DNSResult{
		"example.com": {
			domain.RecordMX:  {"10 mx1.example.com."},
			domain.RecordNS:  {"ns1.example.com."},
			domain.RecordTXT: {"v=spf1 -all"},
		},
		"www.example.com": {
			domain.RecordMX:  {},
			domain.RecordNS:  {},
			domain.RecordTXT: {},
		},
	}, got)
}

func TestStage_OnlyEnabledTypes(t *testing.T) {
	client := newClient(t, "example.com. 60 IN MX 10 mx1.example.com.")

	res, err := New(Config{CheckMX: true}, client, logx.Nop()).Run(context.Background(), domain.NewTargets([]string{"example.com"}), nil)
	require.NoError(t, err)

	recs := res.(domain.DNSResult)["example.com"]
	assert.Len(t, recs, 1)
	assert.Equal(t, []string{"10 mx1.example.com."}, recs[domain.RecordMX])
}

func TestStage_QueryFailureYieldsEmptyList(t *testing.T) {
	client := dnsx.New(dnsx.Config{Servers: []string{"127.0.0.1:1"}, Timeout: 200 * time.Millisecond}, logx.Nop())

	res, err := New(Config{CheckNS: true}, client, logx.Nop()).Run(context.Background(), domain.NewTargets([]string{"example.com"}), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DNSResult{"example.com": {domain.RecordNS: {}}}, res)
}

func TestStage_NoChecksStillListsDomains(t *testing.T) {
	res, err := New(Config{}, nil, logx.Nop()).Run(context.Background(), domain.NewTargets([]string{"example.com"}), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.DNSResult{"example.com": {}}, res)
}

func TestDomains(t *testing.T) {
	targets := domain.NewTargets([]string{"example.com", "192.168.1.1", "example.com", "other.org"})
	subs := domain.SubdomainResult{
		"example.com": {"a.example.com", "b.example.com"},
		"other.org":   {"a.example.com"},
	}

	assert.Equal(t, []string{"example.com", "a.example.com", "b.example.com", "other.org"}, Domains(targets, subs))
}
