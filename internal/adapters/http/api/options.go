package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithMaxBodyBytes caps request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithRequestTimeout bounds handler execution time.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithMount attaches an extra handler, such as docs or the tool endpoint.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		if pattern != "" && h != nil {
			s.mounts = append(s.mounts, mount{pattern: pattern, handler: h})
		}
	}
}

// WithRoutes lets another package attach its own routes to the router.
func WithRoutes(register func(chi.Router)) Option {
	return func(s *Server) {
		if register != nil {
			s.registrars = append(s.registrars, register)
		}
	}
}
