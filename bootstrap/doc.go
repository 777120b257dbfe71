// Package bootstrap wires an endpointkit service: configuration, logging,
// telemetry, the HTTP server, chunks and the system endpoints, run under one
// lifecycle with graceful shutdown.
//
//	var cfg bootstrap.AppConfig
//	_ = config.LoadConfig("endpointd", &cfg)
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*bootstrap.AppConfig]) error {
//	    chunk, err := a.Chunk("admin", handlers, nil)
//	    if err != nil {
//	        return err
//	    }
//	    chunk.RenderResponsesFor(users, "/api")
//	    return nil
//	})
//	err = app.Run(ctx)
//
// Chunks are built during the configure phase, before any component starts,
// so every route exists before the port opens.
package bootstrap
