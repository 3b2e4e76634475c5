package api

import (
	"github.com/lendguard/lendguard/internal/analysis"
	"github.com/lendguard/lendguard/internal/ledger"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Ledger   ledger.System
	Analyzer *analysis.Analyzer
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	ledgerSystem := ledger.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	analyzer := analysis.New(
		runtime.Extraction,
		ledgerSystem,
		runtime.Storage,
		runtime.Metrics,
		runtime.Logger,
		runtime.Analysis,
	)

	return &Domain{
		Ledger:   ledgerSystem,
		Analyzer: analyzer,
	}
}
