// internal/core/domain/store_test.go
package domain

import (
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultStore_SetGet(t *testing.T) {
	store := NewResultStore(NewTargets([]string{"example.com"}))

	_, ok := store.Get(StageSubdomainEnum)
	assert.False(t, ok)

	require.NoError(t, store.Set(StageSubdomainEnum, SubdomainResult{"example.com": {"www.example.com"}}))

	r, ok := store.Get(StageSubdomainEnum)
	require.True(t, ok)
	assert.Equal(t, StageSubdomainEnum, r.Kind())
	assert.True(t, store.Has(StageSubdomainEnum))
	assert.Equal(t, 1, store.Len())
}

func TestResultStore_DuplicateKey(t *testing.T) {
	store := NewResultStore(nil)
	require.NoError(t, store.Set(StageWAFDetector, WAFResult{"a": {}}))

	err := store.Set(StageWAFDetector, WAFResult{"b": {}})

	require.ErrorIs(t, err, ErrDuplicateKey)
	r, _ := store.Get(StageWAFDetector)
	assert.Contains(t, r.(WAFResult), "a")
}

func TestResultStore_NilResult(t *testing.T) {
	store := NewResultStore(nil)

	assert.ErrorIs(t, store.Set(StageWAFDetector, nil), ErrNilResult)
	assert.Zero(t, store.Len())
}

func TestResultStore_TargetsAreCopied(t *testing.T) {
	input := NewTargets([]string{"a.com", "10.0.0.1"})
	store := NewResultStore(input)
	input[0].Value = "mutated"

	got := store.Targets()
	got[1].Value = "mutated"

	assert.Equal(t, []string{"a.com", "10.0.0.1"}, TargetValues(store.Targets()))
}

func TestResultStore_KeysInInsertionOrder(t *testing.T) {
	store := NewResultStore(nil)
	require.NoError(t, store.Set(StageNmapScanner, ServiceScanResult{"x": {Status: "up"}}))
	require.NoError(t, store.Set(StageSubdomainEnum, SubdomainResult{"x": nil}))
	require.NoError(t, store.Set(StageMasscanScanner, PortScanResult{"x": {ResolvedIP: "1.1.1.1"}}))

	assert.Equal(t, []StageKind{StageNmapScanner, StageSubdomainEnum, StageMasscanScanner}, store.Keys())
}

func TestResultStore_TypedAccessors(t *testing.T) {
	store := NewResultStore(nil)

	// absent -> zero variant, safe to read
	assert.Empty(t, store.Subdomains())
	assert.Empty(t, store.PortScan())
	assert.Empty(t, store.WebProbe())
	assert.Empty(t, store.DNS())
	assert.Empty(t, store.ServiceScan())

	require.NoError(t, store.Set(StageMasscanScanner, PortScanResult{
		"example.com": {ResolvedIP: "10.0.0.1", OpenPorts: []int{80, 443}},
	}))

	scan := store.PortScan()
	assert.Equal(t, []int{80, 443}, scan["example.com"].OpenPorts)

	// accessor copies: mutating the copy leaves the store intact
	scan["example.com"].OpenPorts[0] = 1
	delete(scan, "example.com")
	assert.Equal(t, []int{80, 443}, store.PortScan()["example.com"].OpenPorts)
}

func TestResultStore_MarshalJSONPreservesOrder(t *testing.T) {
	store := NewResultStore(nil)
	require.NoError(t, store.Set(StageMasscanScanner, PortScanResult{
		"ok.example.com":  {ResolvedIP: "10.0.0.1", OpenPorts: nil},
		"bad.example.com": {Error: "masscan failed for bad.example.com"},
	}))
	require.NoError(t, store.Set(StageDNSAnalysis, DNSResult{
		"example.com": {RecordMX: {"10 mx.example.com."}},
	}))

	data, err := json.Marshal(store)
	require.NoError(t, err)

	s := string(data)
	assert.Less(t, strings.Index(s, `"MasscanScanner"`), strings.Index(s, `"DNSAnalysis"`))
	assert.Contains(t, s, `"ok.example.com":{"resolved_ip":"10.0.0.1","open_ports":[]}`)
	assert.Contains(t, s, `"bad.example.com":{"error":"masscan failed for bad.example.com"}`)
	assert.Contains(t, s, `"MX":["10 mx.example.com."]`)
}

func TestResultStore_KindMismatch(t *testing.T) {
	store := NewResultStore(nil)

	err := store.Set(StageWebScanner, PortScanResult{"a": {ResolvedIP: "10.0.0.1", OpenPorts: []int{80}}})

	require.ErrorIs(t, err, ErrKindMismatch)
	assert.False(t, store.Has(StageWebScanner))
	assert.Empty(t, store.WebProbe())
	assert.Zero(t, store.Len())
}

func TestResultStore_ConcurrentAccess(t *testing.T) {
	store := NewResultStore(nil)
	var wg sync.WaitGroup
	var stored atomic.Int32

	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if store.Set(StageWAFDetector, WAFResult{"x": {}}) == nil {
				stored.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Get(StageWAFDetector)
			_ = store.Keys()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), stored.Load())
	assert.Equal(t, 1, store.Len())
}
