// internal/platform/registry/stage_registry_test.go
package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/core/ports"
	"reconpipe/internal/platform/config"
	"reconpipe/internal/platform/logx"
)

type stubStage struct{ kind domain.StageKind }

func (s stubStage) Kind() domain.StageKind { return s.kind }
func (s stubStage) Run(context.Context, []domain.Target, *domain.ResultStore) (domain.StageResult, error) {
	return nil, nil
}

func factoryFor(kind domain.StageKind, built *[]domain.StageKind) StageFactory {
	return func(config.Settings) (ports.Stage, error) {
		*built = append(*built, kind)
		return stubStage{kind: kind}, nil
	}
}

func TestStageRegistry_BuildsInExecutionOrder(t *testing.T) {
	r := NewStageRegistry(logx.Nop())
	var built []domain.StageKind

	require.NoError(t, r.Register(domain.StageBreachLookup, nil, factoryFor(domain.StageBreachLookup, &built)))
	require.NoError(t, r.Register(domain.StageNmapScanner, nil, factoryFor(domain.StageNmapScanner, &built)))
	require.NoError(t, r.Register(domain.StageSubdomainEnum, nil, factoryFor(domain.StageSubdomainEnum, &built)))

	stages, err := r.Build(config.Settings{})
	require.NoError(t, err)

	want := []domain.StageKind{domain.StageSubdomainEnum, domain.StageNmapScanner, domain.StageBreachLookup}
	assert.Equal(t, want, built)
	assert.Equal(t, want, r.List())
	require.Len(t, stages, 3)
	assert.Equal(t, domain.StageSubdomainEnum, stages[0].Kind())
}

func TestStageRegistry_DisabledStageIsNeverConstructed(t *testing.T) {
	r := NewStageRegistry(logx.Nop())
	var built []domain.StageKind

	wafEnabled := func(s config.Settings) bool { return s.WAFDetector.Enabled }
	require.NoError(t, r.Register(domain.StageWAFDetector, wafEnabled, factoryFor(domain.StageWAFDetector, &built)))

	stages, err := r.Build(config.Settings{})
	require.NoError(t, err)
	assert.Empty(t, stages)
	assert.Empty(t, built)

	var s config.Settings
	s.WAFDetector.Enabled = true
	stages, err = r.Build(s)
	require.NoError(t, err)
	assert.Len(t, stages, 1)
}

func TestStageRegistry_RegisterValidation(t *testing.T) {
	r := NewStageRegistry(logx.Nop())
	var built []domain.StageKind

	assert.Error(t, r.Register("Bogus", nil, factoryFor("Bogus", &built)))
	assert.Error(t, r.Register(domain.StageDNSAnalysis, nil, nil))

	require.NoError(t, r.Register(domain.StageDNSAnalysis, nil, factoryFor(domain.StageDNSAnalysis, &built)))
	assert.Error(t, r.Register(domain.StageDNSAnalysis, nil, factoryFor(domain.StageDNSAnalysis, &built)), "duplicate")
	assert.True(t, r.IsRegistered(domain.StageDNSAnalysis))
	assert.False(t, r.IsRegistered(domain.StageSSLScanner))
}

func TestStageRegistry_FactoryErrors(t *testing.T) {
	r := NewStageRegistry(logx.Nop())
	boom := errors.New("boom")

	require.NoError(t, r.Register(domain.StageVulnScanner, nil, func(config.Settings) (ports.Stage, error) {
		return nil, boom
	}))
	_, err := r.Build(config.Settings{})
	assert.ErrorIs(t, err, boom)

	r2 := NewStageRegistry(logx.Nop())
	require.NoError(t, r2.Register(domain.StageVulnScanner, nil, func(config.Settings) (ports.Stage, error) {
		return stubStage{kind: domain.StageWebScanner}, nil
	}))
	_, err = r2.Build(config.Settings{})
	assert.Error(t, err, "kind mismatch")
}
