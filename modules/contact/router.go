package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hardiksavani/portfolio-backend/pkg/clientip"
	"github.com/hardiksavani/portfolio-backend/pkg/requestid"
)

// Handle returns the module's HTTP handler with request ID and client IP
// resolution applied. Every method hits the same endpoint so non-POST
// requests receive the pipeline's own 405 envelope instead of the router's
// default.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)

	r.HandleFunc("/", s.handleSubmit)

	return r
}
