package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"espejo/espejo/controllers"
)

// PdfRoutes registers PDF mode: GET /?url=
func PdfRoutes(ctrl *controllers.PdfController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", handleJSON(func(req *http.Request) (any, int, error) {
		res, err := ctrl.Extract(req.Context(), req.URL.Query().Get("url"))
		if err != nil {
			return nil, statusFor(err), err
		}
		return res, http.StatusOK, nil
	}))
	return r
}
