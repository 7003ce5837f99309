// internal/adapters/output/json.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"reconpipe/internal/core/domain"
	"reconpipe/internal/platform/errors"
	"reconpipe/internal/platform/logx"
)

// JSONSink escribe el reporte como un único documento JSON indentado.
type JSONSink struct {
	path   string
	logger logx.Logger
}

// NewJSONSink crea un sink que escribe en path.
func NewJSONSink(path string, logger logx.Logger) *JSONSink {
	return &JSONSink{
		path:   path,
		logger: logger.With("component", "json-sink"),
	}
}

// Name implements ports.ReportSink.
func (s *JSONSink) Name() string { return "json" }

// Path devuelve la ruta de destino.
func (s *JSONSink) Path() string { return s.path }

// Encode serializa el reporte en w con indentación de dos espacios.
func (s *JSONSink) Encode(report domain.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Write crea el directorio padre si hace falta y escribe a un fichero
// temporal que luego se renombra, así nunca queda un reporte a medias.
func (s *JSONSink) Write(report domain.Report) error {
	if s.path == "" {
		return errors.Wrap(errors.ErrInvalidInput, "report path is empty")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.Encode(report, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	stages := 0
	if report.Results != nil {
		stages = report.Results.Len()
	}
	s.logger.Info("report written", "path", s.path, "stages", stages)
	return nil
}
