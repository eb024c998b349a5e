package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct {
	name string
}

var authKey = &contextKey{"userOrRole"}

func WithContextUserOrRole(ctx context.Context, userOrRole string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, authKey, userOrRole)
}

func ContextUserOrRole(ctx context.Context) string {
	if ctx != nil {
		if val, ok := ctx.Value(authKey).(string); ok {
			return val
		}

	}
	return ""
}


type headerHandler struct {
	handler http.Handler
	header  string
}

// NewHeaderHandler binds the value of the header to the request context as the user or role.
// Requests without the header are served anonymously.
func NewHeaderHandler(handler http.Handler, header string) http.Handler {
	return &headerHandler{handler: handler, header: header}
}

func (h *headerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if value := strings.TrimSpace(r.Header.Get(h.header)); value != "" {
		r = r.WithContext(WithContextUserOrRole(r.Context(), value))
	}
	h.handler.ServeHTTP(w, r)
}
