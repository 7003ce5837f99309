// internal/core/ports/exporter.go
package ports

import (
	"io"

	"reconpipe/internal/core/domain"
)

// ReportSink es el port para persistir el reporte final de una ejecución.
type ReportSink interface {
	// Name retorna el nombre del sink (ej: "json")
	Name() string

	// Write persiste el reporte. Se llama una sola vez por ejecución.
	Write(report domain.Report) error
}

// WriterSink permite exportar a cualquier io.Writer.
type WriterSink interface {
	ReportSink

	// Encode serializa el reporte en w
	Encode(report domain.Report, w io.Writer) error
}
