/*
Package coigin connects a [coi.Container] to a gin engine.

[NewMiddleware] attaches the shared container to every request's context;
[NewHandler] adapts a function with [coi.Injected] parameters to a
[gin.HandlerFunc].

Example:

	c, err := coi.NewContainer(
		coi.Provide(NewService, coi.Scoped),
	)

	mw, err := coigin.NewMiddleware(c)

	r := gin.Default()
	r.Use(mw)
	r.GET("/data/:id", coigin.MustNewHandler(
		func(g *gin.Context, svc coi.Injected[Service]) error {
			data, err := svc.Value.Get(g.Request.Context(), g.Param("id"))
			if err != nil {
				return err
			}
			g.JSON(http.StatusOK, data)
			return nil
		},
	))
*/
package coigin
