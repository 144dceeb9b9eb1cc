/*
Package coihttp connects a [coi.Container] to a net/http server.

[NewContainerMiddleware] attaches the shared container to every request's
context before any handler runs. [NewHandler] adapts a function with
[coi.Injected] parameters to an [http.HandlerFunc]; each call derives one
fresh scope from the attached container, resolves the injected parameters,
and runs the original function.

Example:

	c, err := coi.NewContainer(
		coi.Provide(NewRepository, coi.Scoped),
		coi.Provide(NewService, coi.Scoped),
	)

	getData := func(w http.ResponseWriter, r *http.Request, svc coi.Injected[Service]) error {
		return svc.Value.WriteData(w, r.PathValue("id"))
	}

	mw, err := coihttp.NewContainerMiddleware(c)

	mux := http.NewServeMux()
	mux.Handle("GET /data/{id}", mw(coihttp.MustNewHandler(getData)))

	http.ListenAndServe(":8000", mux)

The current *http.Request is registered with each request scope, so scoped
and transient providers can take it as a dependency.
*/
package coihttp
