// internal/platform/validator/validator.go
package validator

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	domainRegex = regexp.MustCompile(`^([a-zA-Z0-9_]([a-zA-Z0-9\-_]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// shellMeta son caracteres que nunca deben llegar a un argv externo dentro de un target.
const shellMeta = "`$&|;<>(){}[]*?!~'\"\\#"

// Domain validators

// IsDomain verifica si un string es un nombre de host válido.
// Los labels intermedios admiten '_' (p.ej. _dmarc.example.com).
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	return domainRegex.MatchString(domain)
}

// NormalizeHost normaliza un hostname: minúsculas, sin espacios ni punto final.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimSuffix(host, ".")
}

// Email validators

// IsEmail valida formato de email (RFC 5322 simplificado).
func IsEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// Network validators

// IsPort valida que un puerto esté en el rango [0-65535].
func IsPort(port int) bool {
	return port >= 0 && port <= 65535
}

// Argument safety

// IsSafeArgument reports whether s can be passed as a single element of an
// external tool's argument vector. Rejects empty strings, anything that looks
// like a flag, whitespace, control characters, and shell metacharacters.
func IsSafeArgument(s string) bool {
	if s == "" || strings.HasPrefix(s, "-") {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
		if strings.ContainsRune(shellMeta, r) {
			return false
		}
	}
	return true
}
