package api

import (
	"github.com/lendguard/lendguard/internal/analysis"
	"github.com/lendguard/lendguard/internal/config"
	"github.com/lendguard/lendguard/internal/infrastructure"
	"github.com/lendguard/lendguard/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	MaxUploadSize int64
	Analysis      analysis.Options
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle:  infra.Lifecycle,
			Logger:     infra.Logger.With("module", "api"),
			Database:   infra.Database,
			Storage:    infra.Storage,
			Extraction: infra.Extraction,
			Metrics:    infra.Metrics,
		},
		Pagination:    cfg.API.Pagination,
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
		Analysis: analysis.Options{
			CheckTimeout:      cfg.Forensics.CheckTimeoutDuration(),
			IdentifierTimeout: cfg.Forensics.IdentifierTimeoutDuration(),
			QualityDPI:        cfg.Forensics.QualityDPI,
			IdentifierDPI:     cfg.Forensics.IdentifierDPI,
			Denylist:          cfg.Forensics.Denylist,
		},
	}
}
