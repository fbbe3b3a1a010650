package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"espejo/espejo/controllers"
	"espejo/espejo/services/translate"
	"espejo/espejo/utils/fetcher"
	"espejo/espejo/utils/hostguard"
	"espejo/espejo/utils/pdf"
)

func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(res)
	}
}

// statusFor maps the pipeline error taxonomy onto HTTP statuses: 400 for
// bad input, 403 for blocked or disallowed hosts, 500 for missing service
// configuration, 502 for everything upstream.
func statusFor(err error) int {
	var upstreamErr *fetcher.UpstreamError
	var resourceErr *fetcher.ResourceExceededError
	var serviceErr *translate.ServiceError

	switch {
	case errors.Is(err, controllers.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, hostguard.ErrHostBlocked),
		errors.Is(err, hostguard.ErrHostNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, translate.ErrConfigMissing):
		return http.StatusInternalServerError
	case errors.As(err, &upstreamErr),
		errors.As(err, &resourceErr),
		errors.As(err, &serviceErr),
		errors.Is(err, fetcher.ErrFetchTimeout),
		errors.Is(err, fetcher.ErrUpstreamUnreachable),
		errors.Is(err, pdf.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
