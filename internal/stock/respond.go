package stock

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/stockmitra/stockmitra/internal/company"
	"github.com/stockmitra/stockmitra/internal/platform/httpx"
	"github.com/stockmitra/stockmitra/internal/platform/store"
)

// respondError maps service errors to RFC7807 problem responses.
//
// The interesting cases: an ambiguous product query and a mutation against an
// outwarded carton are conflicts, not bad requests; a blocked sale (no
// sellable stock) is 422 because the request was well formed but the ledger
// cannot satisfy it; a corrupt store file reaching a mutation is a plain 500
// so nothing gets overwritten.
func respondError(w http.ResponseWriter, err error) {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		ambiguous  *AmbiguousError
		fieldErrs  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &validation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &fieldErrs):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &notFound):
		httpx.Problem(w, http.StatusNotFound, "Product Not Found", err.Error())
	case errors.As(err, &ambiguous):
		httpx.JSON(w, http.StatusConflict, struct {
			httpx.ProblemDetail
			Candidates []ProductRef `json:"candidates"`
		}{
			ProblemDetail: httpx.ProblemDetail{
				Title:  "Ambiguous Product Query",
				Status: http.StatusConflict,
				Detail: err.Error(),
			},
			Candidates: ambiguous.Candidates,
		})
	case errors.Is(err, ErrCartonNotFound):
		httpx.Problem(w, http.StatusNotFound, "Carton Not Found", err.Error())
	case errors.Is(err, ErrCartonOutwarded):
		httpx.Problem(w, http.StatusConflict, "Carton Outwarded", err.Error())
	case errors.Is(err, ErrNoSellableStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "No Sellable Stock", err.Error())
	case errors.Is(err, ErrNothingRequested):
		httpx.Problem(w, http.StatusBadRequest, "Nothing Requested", err.Error())
	case errors.Is(err, company.ErrUnknownCompany):
		httpx.Problem(w, http.StatusNotFound, "Unknown Company", err.Error())
	case errors.Is(err, store.ErrCorrupt):
		httpx.Problem(w, http.StatusInternalServerError, "Store Corrupt", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
