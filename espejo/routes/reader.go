package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"espejo/espejo/controllers"
)

// ReaderRoutes registers reader mode: GET /?url=&lang=
func ReaderRoutes(ctrl *controllers.ReaderController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", handleJSON(func(req *http.Request) (any, int, error) {
		q := req.URL.Query()
		res, err := ctrl.Reader(req.Context(), q.Get("url"), q.Get("lang"))
		if err != nil {
			return nil, statusFor(err), err
		}
		return res, http.StatusOK, nil
	}))
	return r
}

// LinkRoutes registers the links fallback: GET /?url=
func LinkRoutes(ctrl *controllers.ReaderController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", handleJSON(func(req *http.Request) (any, int, error) {
		res, err := ctrl.Links(req.Context(), req.URL.Query().Get("url"))
		if err != nil {
			return nil, statusFor(err), err
		}
		return res, http.StatusOK, nil
	}))
	return r
}
