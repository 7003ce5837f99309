package nmap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconpipe/internal/core/domain"
	perrors "reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/testutil"
)

func TestParseXML(t *testing.T) {
	entry, err := ParseXML(strings.NewReader(testutil.NmapXMLUp), "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "up", entry.Status)
	assert.Equal(t, []domain.ServicePort{
		{Port: 22, Protocol: "tcp", Service: "ssh", Version: "OpenSSH 8.9p1"},
		{Port: 80, Protocol: "tcp", Service: "http", Version: "Apache httpd 2.4.41"},
		{Port: 8081, Protocol: "tcp", Service: "unknown", Version: ""},
	}, entry.Ports)
}

func TestParseXML_HostDown(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		ip   string
	}{
		{"no host element", testutil.NmapXMLDown, "10.0.0.2"},
		{"different host", testutil.NmapXMLUp, "10.0.0.9"},
		{"status down", `<nmaprun><host><status state="down"/><address addr="10.0.0.3" addrtype="ipv4"/></host></nmaprun>`, "10.0.0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ParseXML(strings.NewReader(tt.xml), tt.ip)
			require.NoError(t, err)
			assert.Equal(t, domain.ServiceScanEntry{Status: "host down"}, entry)
		})
	}
}

func TestParseXML_Malformed(t *testing.T) {
	_, err := ParseXML(strings.NewReader("Starting Nmap 7.94"), "10.0.0.1")

	assert.ErrorIs(t, err, perrors.ErrParse)
}

func TestStage_Run(t *testing.T) {
	runner := testutil.NewFakeRunner(map[string]testutil.Response{
		"nmap": {Stdout: testutil.NmapXMLUp},
	})
	resolver := testutil.StaticResolver{"example.com": "10.0.0.1", "alias.example.com": "10.0.0.1"}
	targets := domain.NewTargets([]string{"example.com", "alias.example.com", "nowhere.invalid"})

	stage := New(Config{Ports: "22-80"}, runner, resolver, logx.Nop())
	res, err := stage.Run(context.Background(), targets, domain.NewResultStore(targets))
	require.NoError(t, err)

	scan := res.(domain.ServiceScanResult)
	require.Len(t, scan, 1, "same IP scanned once, unresolvable skipped")
	assert.Equal(t, "up", scan["example.com"].Status)
	assert.Len(t, scan["example.com"].Ports, 3)

	calls := runner.CallsTo("nmap")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-sV", "--open", "-p", "22-80", "-oX", "-", "10.0.0.1"}, calls[0].Args)
}

func TestStage_ToolErrorEntry(t *testing.T) {
	runner := testutil.NewFakeRunner(map[string]testutil.Response{
		"nmap": {Err: errors.New("requires root privileges")},
	})
	targets := domain.NewTargets([]string{"10.0.0.1"})

	res, err := New(Config{}, runner, testutil.StaticResolver{}, logx.Nop()).Run(context.Background(), targets, nil)
	require.NoError(t, err)

	entry := res.(domain.ServiceScanResult)["10.0.0.1"]
	assert.True(t, entry.Failed())
	assert.Contains(t, entry.Error, "requires root privileges")
}
