// internal/core/domain/entities.go
package domain

import "sort"

// Severity de una vulnerabilidad.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// IsValid verifica si la severidad es una de las cuatro conocidas.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Host es un equipo resuelto con sus puertos abiertos.
type Host struct {
	IPAddress string `json:"ip_address"`
	Hostname  string `json:"hostname,omitempty"`
	OpenPorts []int  `json:"open_ports"`
}

// NewHost construye un Host con los puertos deduplicados, ordenados y
// filtrados al rango 0..65535. Nunca comparte el slice del llamador.
func NewHost(ip, hostname string, ports []int) Host {
	return Host{IPAddress: ip, Hostname: hostname, OpenPorts: NormalizePorts(ports)}
}

// NormalizePorts devuelve una copia ordenada, sin duplicados y sin valores fuera de rango.
func NormalizePorts(ports []int) []int {
	seen := make(map[int]struct{}, len(ports))
	out := make([]int, 0, len(ports))
	for _, p := range ports {
		if p < 0 || p > 65535 {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Vulnerability es un hallazgo asociado a un banner o servicio.
type Vulnerability struct {
	CVEID       string   `json:"cve_id"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Evidence    string   `json:"evidence,omitempty"`
}

// SSLInfo describe el certificado visto en un puerto TLS.
type SSLInfo struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Issuer    string `json:"issuer"`
	Subject   string `json:"subject"`
	ValidFrom string `json:"valid_from"`
	ValidTo   string `json:"valid_to"`
	Grade     string `json:"grade"`
}

// BreachRecord es una aparición de un email en una filtración.
type BreachRecord struct {
	Email       string `json:"email"`
	BreachName  string `json:"breach_name"`
	Date        string `json:"date"`
	ExposedData string `json:"exposed_data,omitempty"`
}
