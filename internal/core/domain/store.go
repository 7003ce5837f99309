// internal/core/domain/store.go
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
)

// ResultStore acumula el resultado de cada stage bajo su StageKind.
// Los targets originales son inmutables; cada clave se escribe una sola vez
// y se conserva el orden de inserción.
type ResultStore struct {
	mu      sync.RWMutex
	targets []Target
	order   []StageKind
	results map[StageKind]StageResult
}

// NewResultStore crea un store vacío para targets (se copia la lista).
func NewResultStore(targets []Target) *ResultStore {
	return &ResultStore{
		targets: append([]Target(nil), targets...),
		results: make(map[StageKind]StageResult),
	}
}

// Set guarda result bajo kind. Falla con ErrDuplicateKey si la clave ya existe
// y con ErrKindMismatch si el tipo de result no corresponde a kind.
func (s *ResultStore) Set(kind StageKind, result StageResult) error {
	if result == nil {
		return fmt.Errorf("%w: %s", ErrNilResult, kind)
	}
	if result.Kind() != kind {
		return fmt.Errorf("%w: %s result stored under %s", ErrKindMismatch, result.Kind(), kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, kind)
	}
	s.results[kind] = result
	s.order = append(s.order, kind)
	return nil
}

// Get devuelve el resultado de kind, si existe. Nunca falla.
func (s *ResultStore) Get(kind StageKind) (StageResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[kind]
	return r, ok
}

// Has indica si kind ya tiene resultado.
func (s *ResultStore) Has(kind StageKind) bool {
	_, ok := s.Get(kind)
	return ok
}

// Targets devuelve una copia de los targets originales.
func (s *ResultStore) Targets() []Target {
	return append([]Target(nil), s.targets...)
}

// Keys devuelve las claves en orden de inserción.
func (s *ResultStore) Keys() []StageKind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]StageKind(nil), s.order...)
}

// Len devuelve el número de claves almacenadas.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// Typed accessors. Devuelven una copia del resultado o la variante vacía.

func (s *ResultStore) Subdomains() SubdomainResult {
	r, _ := s.Get(StageSubdomainEnum)
	v, _ := r.(SubdomainResult)
	return v.Clone()
}

func (s *ResultStore) DNS() DNSResult {
	r, _ := s.Get(StageDNSAnalysis)
	v, _ := r.(DNSResult)
	return v.Clone()
}

func (s *ResultStore) PortScan() PortScanResult {
	r, _ := s.Get(StageMasscanScanner)
	v, _ := r.(PortScanResult)
	return v.Clone()
}

func (s *ResultStore) ServiceScan() ServiceScanResult {
	r, _ := s.Get(StageNmapScanner)
	v, _ := r.(ServiceScanResult)
	return v.Clone()
}

func (s *ResultStore) WebProbe() WebResult {
	r, _ := s.Get(StageWebScanner)
	v, _ := r.(WebResult)
	return v.Clone()
}

// MarshalJSON emite {stageName: payload} respetando el orden de inserción.
func (s *ResultStore) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kind := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(kind))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.results[kind])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", kind, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
