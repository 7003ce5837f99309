// internal/core/domain/stage.go
package domain

// StageKind identifica un stage y es a la vez la clave de su resultado en el
// ResultStore y en el reporte.
type StageKind string

const (
	StageSubdomainEnum  StageKind = "SubdomainEnum"
	StageDNSAnalysis    StageKind = "DNSAnalysis"
	StageMasscanScanner StageKind = "MasscanScanner"
	StageNmapScanner    StageKind = "NmapScanner"
	StageWAFDetector    StageKind = "WAFDetector"
	StageSSLScanner     StageKind = "SSLScanner"
	StageWebScanner     StageKind = "WebScanner"
	StageVulnScanner    StageKind = "VulnScanner"
	StageBreachLookup   StageKind = "BreachLookup"
)

// StageOrder es el orden fijo de ejecución.
var StageOrder = []StageKind{
	StageSubdomainEnum,
	StageDNSAnalysis,
	StageMasscanScanner,
	StageNmapScanner,
	StageWAFDetector,
	StageSSLScanner,
	StageWebScanner,
	StageVulnScanner,
	StageBreachLookup,
}

// IsValid verifica si el stage es conocido.
func (k StageKind) IsValid() bool {
	for _, s := range StageOrder {
		if s == k {
			return true
		}
	}
	return false
}

// String retorna la representación string del stage.
func (k StageKind) String() string {
	return string(k)
}

// StageStatus es el estado de un stage dentro de una ejecución.
type StageStatus string

const (
	StageStatusRunning   StageStatus = "running"
	StageStatusSucceeded StageStatus = "succeeded"
	StageStatusFailed    StageStatus = "failed"
)
