package controllers

import (
	"net/http"

	"github.com/aurelioventura/healthscan-backend/api/responses"
	statsvc "github.com/aurelioventura/healthscan-backend/internal/stats"
	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
)

// GetStats serves the cached statistics snapshot, computing it on first
// request.
func GetStats(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats service unavailable"))
			return
		}

		if snapshot := svc.Current(); snapshot != nil {
			responses.WriteSuccess(w, snapshot)
			return
		}

		snapshot, err := svc.Refresh(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// RefreshStats forces a recomputation of the statistics snapshot.
func RefreshStats(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats service unavailable"))
			return
		}

		snapshot, err := svc.Refresh(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}
