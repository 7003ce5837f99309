// Package common provides helpers shared by the stage implementations:
// target expansion, IPv4 resolution and argument checks.
package common

import "reconpipe/internal/core/domain"

// Expand returns each original target followed by the subdomains recorded for
// that target, in first-occurrence order, without duplicates.
func Expand(targets []domain.Target, subdomains domain.SubdomainResult) []string {
	values := make([]string, 0, len(targets))
	for _, t := range targets {
		values = append(values, t.Value)
		values = append(values, subdomains.For(t.Value)...)
	}
	return Dedup(values)
}

// Dedup elimina duplicados conservando el orden de primera aparición.
func Dedup(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
