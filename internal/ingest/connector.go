package ingest

import (
	"context"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
)

// Connector reads one source's export format into the shared schema.
type Connector interface {
	Name() string
	Source() domain.Source
	Dir() string
	Pattern() string
	Load(ctx context.Context, path string) (domain.Batch, error)
}
