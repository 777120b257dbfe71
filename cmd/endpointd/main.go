// Command endpointd serves an in-memory users service through an endpointkit
// chunk. Configuration is read from the first config.yml found in
// cmd/endpointd (relative to the working directory, its parent or
// grandparent), then config/ and ../config/, then the working directory.
// Environment variables override it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/endpointkit/bootstrap"
	"github.com/kbukum/endpointkit/config"
	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/logger"
)

const serviceName = "endpointd"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg bootstrap.AppConfig
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}

	users := newUserStore()
	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*bootstrap.AppConfig]) error {
		return wire(a, users)
	})
	return app.Run(ctx)
}

// wire builds the api chunk and renders the users service under its
// /v1 subtree.
func wire(a *bootstrap.App[*bootstrap.AppConfig], users *userStore) error {
	svc, err := users.Service(a.Logger.WithComponent("users"))
	if err != nil {
		return err
	}

	chunk, err := a.Chunk("api", endpoint.HandlerMap{"stats": users.stats}, nil)
	if err != nil {
		return err
	}
	report := chunk.RenderResponsesForReport(svc, endpoint.JoinPath(chunk.RootPath(), "/v1"))
	if report.Err != nil {
		return fmt.Errorf("users service: %w", report.Err)
	}
	if !report.OK() {
		return fmt.Errorf("users service: no endpoint registered")
	}
	for _, o := range report.Failed() {
		a.Logger.Warn("Endpoint not served", logger.MergeWithError(logger.EndpointFields(report.Service, o.Endpoint), o.Err))
	}
	return nil
}
