package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"espejo/espejo/controllers"
)

const assetCacheControl = "public, max-age=3600, stale-while-revalidate=86400"

// AssetRoutes registers the pass-through proxy: GET /?url=
func AssetRoutes(ctrl *controllers.AssetController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		res, err := ctrl.Asset(req.Context(), req.URL.Query().Get("url"))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		if res.ContentType != "" {
			w.Header().Set("Content-Type", res.ContentType)
		}
		w.Header().Set("Cache-Control", assetCacheControl)
		w.WriteHeader(res.Status)
		w.Write(res.Body)
	})
	return r
}
