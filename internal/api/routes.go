package api

import (
	"net/http"

	"github.com/lendguard/lendguard/internal/analysis"
	"github.com/lendguard/lendguard/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		analysis.NewHandler(domain.Analyzer, runtime.Logger, runtime.MaxUploadSize).Routes(),
		domain.Ledger.Handler().Routes(),
		newArchiveHandler(runtime).routes(),
	)
}
