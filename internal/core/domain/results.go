// internal/core/domain/results.go
package domain

import (
	"encoding/json"
	"sort"
)

// StageResult es la unión cerrada de resultados de stage. Cada variante sabe
// bajo qué clave se guarda y si está vacía (los resultados vacíos no se guardan).
type StageResult interface {
	Kind() StageKind
	IsEmpty() bool
	Len() int
	isStageResult()
}

// ============================================================================
// SubdomainEnum
// ============================================================================

// SubdomainResult: target -> subdominios (ordenados, sin duplicados).
type SubdomainResult map[string][]string

func (SubdomainResult) Kind() StageKind { return StageSubdomainEnum }
func (r SubdomainResult) IsEmpty() bool { return len(r) == 0 }
func (r SubdomainResult) Len() int { return len(r) }
func (SubdomainResult) isStageResult() {}

// Clone devuelve una copia profunda.
func (r SubdomainResult) Clone() SubdomainResult {
	if r == nil {
		return nil
	}
	out := make(SubdomainResult, len(r))
	for k, v := range r {
		out[k] = append([]string{}, v...)
	}
	return out
}

// For devuelve los subdominios registrados para target (nil si ninguno).
func (r SubdomainResult) For(target string) []string {
	return r[target]
}

// ============================================================================
// DNSAnalysis
// ============================================================================

// DNSRecordType es un tipo de registro consultado.
type DNSRecordType string

const (
	RecordMX  DNSRecordType = "MX"
	RecordNS  DNSRecordType = "NS"
	RecordTXT DNSRecordType = "TXT"
)

// DNSRecords: tipo de registro -> valores. Sólo contiene los tipos habilitados.
type DNSRecords map[DNSRecordType][]string

// DNSResult: dominio -> registros.
type DNSResult map[string]DNSRecords

func (DNSResult) Kind() StageKind { return StageDNSAnalysis }
func (r DNSResult) IsEmpty() bool { return len(r) == 0 }
func (r DNSResult) Len() int { return len(r) }
func (DNSResult) isStageResult() {}

// Clone devuelve una copia profunda.
func (r DNSResult) Clone() DNSResult {
	if r == nil {
		return nil
	}
	out := make(DNSResult, len(r))
	for d, recs := range r {
		cp := make(DNSRecords, len(recs))
		for t, vals := range recs {
			cp[t] = append([]string{}, vals...)
		}
		out[d] = cp
	}
	return out
}

// ============================================================================
// MasscanScanner
// ============================================================================

// PortScanEntry es el resultado del escaneo rápido de un target:
// o bien {resolved_ip, open_ports} o bien {error}.
type PortScanEntry struct {
	ResolvedIP string
	OpenPorts  []int
	Error      string
}

// NewPortScanEntry convierte un Host escaneado en una entrada con éxito.
func NewPortScanEntry(h Host) PortScanEntry {
	return PortScanEntry{ResolvedIP: h.IPAddress, OpenPorts: NormalizePorts(h.OpenPorts)}
}

// Failed indica si la entrada es de error.
func (e PortScanEntry) Failed() bool {
	return e.Error != ""
}

// HasPort indica si port está entre los abiertos.
func (e PortScanEntry) HasPort(port int) bool {
	for _, p := range e.OpenPorts {
		if p == port {
			return true
		}
	}
	return false
}

func (e PortScanEntry) MarshalJSON() ([]byte, error) {
	if e.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{e.Error})
	}
	ports := e.OpenPorts
	if ports == nil {
		ports = []int{}
	}
	return json.Marshal(struct {
		ResolvedIP string `json:"resolved_ip"`
		OpenPorts  []int  `json:"open_ports"`
	}{e.ResolvedIP, ports})
}

// PortScanResult: target expandido -> entrada.
type PortScanResult map[string]PortScanEntry

func (PortScanResult) Kind() StageKind { return StageMasscanScanner }
func (r PortScanResult) IsEmpty() bool { return len(r) == 0 }
func (r PortScanResult) Len() int { return len(r) }
func (PortScanResult) isStageResult() {}

// Clone devuelve una copia profunda.
func (r PortScanResult) Clone() PortScanResult {
	if r == nil {
		return nil
	}
	out := make(PortScanResult, len(r))
	for k, v := range r {
		v.OpenPorts = append([]int(nil), v.OpenPorts...)
		out[k] = v
	}
	return out
}

// Targets devuelve las claves ordenadas, para que los stages que consumen el
// escaneo rápido recorran los targets siempre en el mismo orden.
func (r PortScanResult) Targets() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================================
// NmapScanner
// ============================================================================

// ServicePort es un puerto identificado por el escaneo profundo.
type ServicePort struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	Service  string `json:"service"`
	Version  string `json:"version"`
}

// ServiceScanEntry: {status, ports} o {error}.
type ServiceScanEntry struct {
	Status string
	Ports  []ServicePort
	Error  string
}

// Failed indica si la entrada es de error.
func (e ServiceScanEntry) Failed() bool {
	return e.Error != ""
}

func (e ServiceScanEntry) MarshalJSON() ([]byte, error) {
	if e.Failed() {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{e.Error})
	}
	return json.Marshal(struct {
		Status string        `json:"status"`
		Ports  []ServicePort `json:"ports,omitempty"`
	}{e.Status, e.Ports})
}

// ServiceScanResult: target original -> entrada.
type ServiceScanResult map[string]ServiceScanEntry

func (ServiceScanResult) Kind() StageKind { return StageNmapScanner }
func (r ServiceScanResult) IsEmpty() bool { return len(r) == 0 }
func (r ServiceScanResult) Len() int { return len(r) }
func (ServiceScanResult) isStageResult() {}

// Clone devuelve una copia profunda.
func (r ServiceScanResult) Clone() ServiceScanResult {
	if r == nil {
		return nil
	}
	out := make(ServiceScanResult, len(r))
	for k, v := range r {
		v.Ports = append([]ServicePort(nil), v.Ports...)
		out[k] = v
	}
	return out
}

// ============================================================================
// WAFDetector
// ============================================================================

// WAFEntry es el veredicto de WAF para un target.
type WAFEntry struct {
	WAFDetected bool   `json:"waf_detected"`
	WAFDetails  string `json:"waf_details"`
}

// WAFResult: target -> veredicto.
type WAFResult map[string]WAFEntry

func (WAFResult) Kind() StageKind { return StageWAFDetector }
func (r WAFResult) IsEmpty() bool { return len(r) == 0 }
func (r WAFResult) Len() int { return len(r) }
func (WAFResult) isStageResult() {}

// ============================================================================
// SSLScanner
// ============================================================================

// TLSResult: target -> certificados vistos.
type TLSResult map[string][]SSLInfo

func (TLSResult) Kind() StageKind { return StageSSLScanner }
func (r TLSResult) IsEmpty() bool { return len(r) == 0 }
func (r TLSResult) Len() int { return len(r) }
func (TLSResult) isStageResult() {}

// ============================================================================
// WebScanner
// ============================================================================

// WebEntry es lo observado en una URL.
type WebEntry struct {
	StatusCode       int
	Server           string
	Title            string
	DirectoryListing bool
	Dirsearch        []string
	DirsearchError   string
	Error            string
}

// Failed indica si la petición principal falló.
func (e WebEntry) Failed() bool {
	return e.Error != ""
}

func (e WebEntry) MarshalJSON() ([]byte, error) {
	if e.Failed() {
		return json.Marshal(struct {
			Error          string   `json:"error"`
			Dirsearch      []string `json:"dirsearch,omitempty"`
			DirsearchError string   `json:"dirsearch_error,omitempty"`
		}{e.Error, e.Dirsearch, e.DirsearchError})
	}
	return json.Marshal(struct {
		StatusCode       int      `json:"status_code"`
		Server           string   `json:"server"`
		Title            string   `json:"title,omitempty"`
		DirectoryListing bool     `json:"directory_listing,omitempty"`
		Dirsearch        []string `json:"dirsearch,omitempty"`
		DirsearchError   string   `json:"dirsearch_error,omitempty"`
	}{e.StatusCode, e.Server, e.Title, e.DirectoryListing, e.Dirsearch, e.DirsearchError})
}

// WebResult: URL -> entrada.
type WebResult map[string]WebEntry

func (WebResult) Kind() StageKind { return StageWebScanner }
func (r WebResult) IsEmpty() bool { return len(r) == 0 }
func (r WebResult) Len() int { return len(r) }
func (WebResult) isStageResult() {}

// Clone devuelve una copia profunda.
func (r WebResult) Clone() WebResult {
	if r == nil {
		return nil
	}
	out := make(WebResult, len(r))
	for k, v := range r {
		v.Dirsearch = append([]string(nil), v.Dirsearch...)
		out[k] = v
	}
	return out
}

// URLs devuelve las claves ordenadas.
func (r WebResult) URLs() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================================
// VulnScanner
// ============================================================================

// VulnResult: URL o target:puerto -> vulnerabilidades. Sin claves vacías.
type VulnResult map[string][]Vulnerability

func (VulnResult) Kind() StageKind { return StageVulnScanner }
func (r VulnResult) IsEmpty() bool { return len(r) == 0 }
func (r VulnResult) Len() int { return len(r) }
func (VulnResult) isStageResult() {}

// ============================================================================
// BreachLookup
// ============================================================================

// BreachResult: email -> registros. Sin claves vacías.
type BreachResult map[string][]BreachRecord

func (BreachResult) Kind() StageKind { return StageBreachLookup }
func (r BreachResult) IsEmpty() bool { return len(r) == 0 }
func (r BreachResult) Len() int { return len(r) }
func (BreachResult) isStageResult() {}
