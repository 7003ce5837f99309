package masscan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/logx"
	"reconpipe/internal/testutil"
)

func TestParseGrepable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		host  string
		want  []int
	}{
		{
			name:  "two lines same host, other host ignored",
			input: testutil.GrepableMasscan,
			host:  "10.0.0.1",
			want:  []int{80, 443},
		},
		{
			name:  "prefix of another address does not match",
			input: testutil.GrepableMasscan,
			host:  "10.0.0.10",
			want:  []int{22},
		},
		{
			name:  "multiple triples on one line",
			input: "Host: 10.0.0.5 ()\tPorts: 22/open/tcp//ssh///, 25/closed/tcp//smtp///, 80/open/tcp//http///\tIgnored State: closed (997)\n",
			host:  "10.0.0.5",
			want:  []int{22, 80},
		},
		{
			name:  "malformed lines skipped",
			input: "garbage\nHost: 10.0.0.1 ()\tPorts: abc/open/tcp//\nHost: 10.0.0.1 ()\tPorts: 70000/open/tcp//\nHost: 10.0.0.1 ()\tPorts: 8080/open/tcp//http-alt//\n",
			host:  "10.0.0.1",
			want:  []int{8080},
		},
		{
			name:  "line without Ports marker",
			input: "Host: 10.0.0.1 ()\tStatus: Up\n",
			host:  "10.0.0.1",
			want:  []int{},
		},
		{
			name:  "empty input",
			input: "",
			host:  "10.0.0.1",
			want:  []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseGrepable(strings.NewReader(tt.input), tt.host)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGrepableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte(testutil.GrepableMasscan), 0o600))

	assert.Equal(t, []int{80, 443}, ParseGrepableFile(path, "10.0.0.1"))
	assert.Equal(t, []int{}, ParseGrepableFile(filepath.Join(t.TempDir(), "missing.txt"), "10.0.0.1"))
}

func newStage(runner *testutil.FakeRunner, resolver testutil.StaticResolver) *Stage {
	return New(Config{Ports: "1-1000", Rate: 500, AdditionalArgs: []string{"--wait", "0"}}, runner, resolver, logx.Nop())
}

func TestStage_SharedIPScannedOnce(t *testing.T) {
	runner := testutil.NewFakeRunner(map[string]testutil.Response{
		"masscan": {OutputFlag: "-oG", Output: testutil.GrepableMasscan},
	})
	resolver := testutil.StaticResolver{"example.com": "10.0.0.1", "www.example.com": "10.0.0.1"}

	store := domain.NewResultStore(domain.NewTargets([]string{"example.com"}))
	require.NoError(t, store.Set(domain.StageSubdomainEnum, domain.SubdomainResult{"example.com": {"www.example.com"}}))

	res, err := newStage(runner, resolver).Run(context.Background(), store.Targets(), store)
	require.NoError(t, err)

	scan := res.(domain.PortScanResult)
	assert.Equal(t, domain.PortScanEntry{ResolvedIP: "10.0.0.1", OpenPorts: []int{80, 443}}, scan["example.com"])
	assert.Equal(t, domain.PortScanEntry{ResolvedIP: "10.0.0.1", OpenPorts: []int{80, 443}}, scan["www.example.com"])

	calls := runner.CallsTo("masscan")
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.Equal(t, []string{"10.0.0.1", "--rate", "500", "-p", "1-1000", "--wait", "0", "-oG"}, args[:8])
	assert.Equal(t, "--open", args[len(args)-1])
	assert.True(t, strings.HasSuffix(args[8], "masscan_results.txt"))
}

func TestStage_ToolFailureRecordedPerTarget(t *testing.T) {
	runner := testutil.NewFakeRunner(map[string]testutil.Response{
		"masscan": {Err: errors.New("permission denied")},
	})

	store := domain.NewResultStore(domain.NewTargets([]string{"10.0.0.1"}))
	res, err := newStage(runner, nil).Run(context.Background(), store.Targets(), store)

	require.NoError(t, err)
	assert.Equal(t, domain.PortScanEntry{Error: "masscan failed for 10.0.0.1"}, res.(domain.PortScanResult)["10.0.0.1"])
}

func TestStage_MissingBinary(t *testing.T) {
	runner := testutil.NewFakeRunner(nil)

	store := domain.NewResultStore(domain.NewTargets([]string{"10.0.0.1", "10.0.0.2"}))
	res, err := newStage(runner, nil).Run(context.Background(), store.Targets(), store)

	require.NoError(t, err)
	scan := res.(domain.PortScanResult)
	assert.True(t, scan["10.0.0.1"].Failed())
	assert.True(t, scan["10.0.0.2"].Failed())
}

func TestStage_UnresolvableSkippedAndUnsafeRejected(t *testing.T) {
	runner := testutil.NewFakeRunner(map[string]testutil.Response{
		"masscan": {OutputFlag: "-oG", Output: ""},
	})

	store := domain.NewResultStore(domain.NewTargets([]string{"nowhere.invalid", "-oG/etc/passwd", "a.com;id", "10.0.0.1"}))
	res, err := newStage(runner, testutil.StaticResolver{}).Run(context.Background(), store.Targets(), store)

	require.NoError(t, err)
	scan := res.(domain.PortScanResult)

	assert.NotContains(t, scan, "nowhere.invalid")
	assert.True(t, scan["-oG/etc/passwd"].Failed())
	assert.True(t, scan["a.com;id"].Failed())
	assert.Equal(t, domain.PortScanEntry{ResolvedIP: "10.0.0.1", OpenPorts: []int{}}, scan["10.0.0.1"])

	// sólo el target seguro llega al binario
	require.Len(t, runner.CallsTo("masscan"), 1)
	assert.Equal(t, "10.0.0.1", runner.CallsTo("masscan")[0].Args[0])
}
