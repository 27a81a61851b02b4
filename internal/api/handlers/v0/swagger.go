package v0

import (
	"net/http"

	_ "github.com/swaggo/files"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SwaggerHandler returns a handler that serves the Swagger UI for the
// synthesized OpenAPI document
func SwaggerHandler(basePath string) http.HandlerFunc {
	handler := httpSwagger.Handler(
		httpSwagger.URL(basePath+"/openapi.json"),
		httpSwagger.DeepLinking(true),
	)

	return func(w http.ResponseWriter, r *http.Request) {
		// When accessed directly, redirect to the UI path
		if r.URL.Path == basePath+"/swagger" {
			http.Redirect(w, r, basePath+"/swagger/", http.StatusFound)
			return
		}

		handler.ServeHTTP(w, r)
	}
}
