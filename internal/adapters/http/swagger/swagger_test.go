package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		r := chi.NewRouter()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, r)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				r.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/team_rating:")
			})

			convey.Convey("And it should handle /api-docs route", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				r.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, redocScript)
			})

			convey.Convey("And other methods are not allowed", func() {
				req := httptest.NewRequest("POST", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				r.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestSwaggerHandlerWithNilRouter(t *testing.T) {
	convey.Convey("Given a nil router", t, func() {
		convey.Convey("Then registering should panic", func() {
			convey.So(func() {
				Register(context.Background(), nil)
			}, convey.ShouldPanic)
		})
	})
}
