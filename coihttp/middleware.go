package coihttp

import (
	"net/http"

	"github.com/Nashenas88/coi-go"
	"github.com/Nashenas88/coi-go/internal/errors"
)

// NewContainerMiddleware returns middleware that attaches the shared
// [coi.Container] to every request's context.
//
// Install it once, ahead of any handler built with [NewHandler], so the
// container is reachable by the time a handler runs. The container is shared
// read-only across all requests; each handler call derives its own scope from
// it. Nesting the middleware with a different container shadows the outer
// one for the wrapped handlers.
func NewContainerMiddleware(c *coi.Container) (func(http.Handler) http.Handler, error) {
	if c == nil {
		return nil, errors.New("coihttp.NewContainerMiddleware: container is nil")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := coi.WithContainer(r.Context(), c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}
