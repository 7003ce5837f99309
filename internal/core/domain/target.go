// internal/core/domain/target.go
package domain

import "strings"

// TargetKind clasifica un target de entrada.
type TargetKind int

const (
	// KindHostname es cualquier cosa que no sea un literal IPv4 estricto
	KindHostname TargetKind = iota

	// KindIPLiteral son cuatro componentes decimales 0-255 separados por puntos
	KindIPLiteral
)

// String retorna la representación string del tipo.
func (k TargetKind) String() string {
	if k == KindIPLiteral {
		return "ip"
	}
	return "hostname"
}

// Classify decide si s es un literal IPv4. Exactamente cuatro componentes
// no vacíos, sólo dígitos, cada uno en [0,255], sin ningún otro carácter.
// Ceros a la izquierda se aceptan ("010" vale 10). Todo lo demás es hostname,
// incluidos IPv6 y cadenas con espacios.
func Classify(s string) TargetKind {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return KindHostname
	}
	for _, p := range parts {
		if !isOctet(p) {
			return KindHostname
		}
	}
	return KindIPLiteral
}

func isOctet(p string) bool {
	if p == "" {
		return false
	}
	n := 0
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
		if n > 255 {
			return false
		}
	}
	return true
}

// Target es un objetivo de entrada, clasificado una sola vez.
type Target struct {
	Value string
	Kind  TargetKind
}

// NewTarget clasifica s y construye el target. El valor se conserva tal cual.
func NewTarget(s string) Target {
	return Target{Value: s, Kind: Classify(s)}
}

// NewTargets construye targets preservando el orden de entrada.
func NewTargets(values []string) []Target {
	out := make([]Target, 0, len(values))
	for _, v := range values {
		out = append(out, NewTarget(v))
	}
	return out
}

// IsIP indica si el target es un literal IPv4.
func (t Target) IsIP() bool {
	return t.Kind == KindIPLiteral
}

func (t Target) String() string {
	return t.Value
}

// TargetValues devuelve los valores en el mismo orden.
func TargetValues(targets []Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Value
	}
	return out
}
