/*
Package coi provides dependency injection for HTTP handler functions.

A handler declares container-supplied parameters with the [Injected] marker
type. [Wrap] rewrites the function into one with those parameters removed;
the wrapper resolves each injected parameter from a per-request scope before
the original body runs.

	handler := func(w http.ResponseWriter, r *http.Request, svc coi.Injected[Service]) error {
		return svc.Value.Handle(w, r)
	}

The container is attached to the application once, before the server starts,
and every request derives its own isolated scope from it:

	c, err := coi.NewContainer(
		coi.Provide(NewRepository, coi.Scoped),
		coi.Provide(NewService, coi.Scoped),
	)

	mw, err := coihttp.NewContainerMiddleware(c)
	mux.Handle("/data/{id}", mw(coihttp.MustNewHandler(handler)))

See the coihttp and coigin packages for framework integration, and the
examples directory for a complete application.
*/
package coi
