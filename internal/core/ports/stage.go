// internal/core/ports/stage.go
package ports

import (
	"context"

	"reconpipe/internal/core/domain"
)

// Stage es el port primario de cada módulo de reconocimiento.
//
// Run recibe los targets originales y el store con los resultados de los
// stages anteriores, que sólo debe leer. Devuelve su propio resultado; el
// pipeline decide si guardarlo. Un error devuelto (o un panic) marca el stage
// como fallido sin detener el pipeline.
type Stage interface {
	// Kind identifica el stage y la clave bajo la que se guarda su resultado
	Kind() domain.StageKind

	// Run ejecuta el stage
	Run(ctx context.Context, targets []domain.Target, store *domain.ResultStore) (domain.StageResult, error)
}
