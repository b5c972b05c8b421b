package middleware

import (
	"log/slog"
	"net/http"

	"github.com/medge/codewords/internal/api/apierr"
	"github.com/medge/codewords/internal/middleware"
)

// Recovery wraps the shared panic recovery so API panics surface as JSON
// error envelopes rather than bare 500s
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
