package waf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/httpclient"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/stages/sniff"
	"reconpipe/internal/testutil"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		header  http.Header
		cookies []*http.Cookie
		want    string
		found   bool
	}{
		{"cloudflare server", http.Header{"Server": {"cloudflare"}}, nil, "Cloudflare", true},
		{"cf-ray only", http.Header{"Cf-Ray": {"7d1f-MAD"}}, nil, "Cloudflare", true},
		{"akamai", http.Header{"Server": {"AkamaiGHost"}}, nil, "Akamai", true},
		{"sucuri", http.Header{"X-Sucuri-Id": {"11005"}}, nil, "Sucuri", true},
		{"incapsula header", http.Header{"X-Iinfo": {"1-2-3"}}, nil, "Imperva Incapsula", true},
		{"incapsula cookie", http.Header{}, []*http.Cookie{{Name: "incap_ses_123_456", Value: "x"}}, "Imperva Incapsula", true},
		{"cloudfront", http.Header{"X-Amz-Cf-Id": {"abc=="}}, nil, "Amazon CloudFront", true},
		{"plain nginx", http.Header{"Server": {"nginx/1.25"}}, nil, "", false},
		{"no headers", http.Header{}, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Detect(tt.header, tt.cookies)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func storeWithScan(t *testing.T, scan domain.PortScanResult) *domain.ResultStore {
	t.Helper()
	store := domain.NewResultStore(nil)
	require.NoError(t, store.Set(domain.StageMasscanScanner, scan))
	return store
}

func TestStage_Run(t *testing.T) {
	waf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer waf.Close()
	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Server", "nginx")
	}))
	defer plain.Close()

	_, wafPort := testutil.SplitHostPort(t, waf.Listener.Addr().String())
	_, plainPort := testutil.SplitHostPort(t, plain.Listener.Addr().String())

	store := storeWithScan(t, domain.PortScanResult{
		"127.0.0.1": {ResolvedIP: "127.0.0.1", OpenPorts: []int{22, wafPort}},
		"localhost": {ResolvedIP: "127.0.0.1", OpenPorts: []int{plainPort}},
		"bad.test":  {Error: "masscan failed for bad.test"},
	})

	client := httpclient.New(httpclient.Config{Timeout: 3 * time.Second, InsecureSkipVerify: true}, logx.Nop())
	stage := New(client, sniff.New(time.Second, logx.Nop()), []int{wafPort, plainPort}, logx.Nop())

	res, err := stage.Run(context.Background(), nil, store)
	require.NoError(t, err)

	got := res.(domain.WAFResult)
	assert.Equal(t, domain.WAFEntry{WAFDetected: true, WAFDetails: "Cloudflare"}, got["127.0.0.1"])
	assert.Equal(t, domain.WAFEntry{}, got["localhost"])
	assert.NotContains(t, got, "bad.test")
}

func TestStage_NoPortScan(t *testing.T) {
	stage := New(nil, nil, nil, logx.Nop())

	res, err := stage.Run(context.Background(), nil, domain.NewResultStore(nil))

	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
	assert.Equal(t, []int{80, 443, 8080, 8443}, stage.ports)
}
