package controllers

import (
	"net/http"

	"github.com/aurelioventura/healthscan-backend/api/responses"
	"github.com/aurelioventura/healthscan-backend/api/validators"
	productsvc "github.com/aurelioventura/healthscan-backend/internal/products"
	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
	"github.com/aurelioventura/healthscan-backend/pkg/logger"
)

const maxRequestedPage = 1_000_000

// SearchProducts serves one page of products matching the query or
// category filter.
func SearchProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxRequestedPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := validators.ParseQueryCategory(r, "category")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), productsvc.SearchInput{
			Query:    validators.ParseQueryString(r, "q"),
			Category: category,
			Page:     page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
