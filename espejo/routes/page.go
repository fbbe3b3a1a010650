package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"espejo/espejo/controllers"
)

// PageRoutes registers full-page mode: GET /?url=&lang=
func PageRoutes(ctrl *controllers.PageController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		out, err := ctrl.FullPage(req.Context(), q.Get("url"), q.Get("lang"))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(out))
	})
	return r
}
