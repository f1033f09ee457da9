package pipeline

import (
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/config"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/ingest"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/ingest/ejm"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/ingest/joe"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/reconcile"
)

// Connectors returns the enabled sources, JOE first.
func Connectors(cfg config.Config) []ingest.Connector {
	var out []ingest.Connector
	if cfg.Sources.JOE.Enabled {
		out = append(out, joe.New(joe.Config{
			Dir:     cfg.Sources.JOE.Dir,
			Pattern: cfg.Sources.JOE.Pattern,
		}))
	}
	if cfg.Sources.EJM.Enabled {
		out = append(out, ejm.New(ejm.Config{
			Dir:     cfg.Sources.EJM.Dir,
			Pattern: cfg.Sources.EJM.Pattern,
		}))
	}
	return out
}

// FromConfig wires a Runner; History, Out and Log are left to the caller.
func FromConfig(cfg config.Config) *Runner {
	return &Runner{
		Connectors: Connectors(cfg),
		Engine:     reconcile.New(cfg.Filters.ExcludedCountries),
		MasterPath: cfg.Paths.MasterFile,
	}
}
