package bootstrap

import (
	"context"

	"lab-notebook-client/internal/client"
	"lab-notebook-client/internal/config"
	"lab-notebook-client/internal/pkg/logger"
	"lab-notebook-client/internal/store"
	"lab-notebook-client/internal/tracer"
)

// Container wires the client stack: config -> logger/tracer -> API
// client -> stores. Consumers receive store handles through the
// container rather than constructing them piecemeal.
type Container struct {
	Config   *config.Config
	Logger   logger.ILogger
	API      client.IAPIClient
	Session  store.ISessionStore
	Notebook store.INotebookStore

	shutdownTracer func(context.Context) error
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	zapLogger := logger.NewZapLogger(cfg.Log.FilePath, cfg.IsProduction())
	shutdownTracer := tracer.InitTracer()

	// 2. API Client
	api, err := client.New(client.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.RequestTimeout,
		CookieFilePath: cfg.API.CookieFilePath,
		Logger:         zapLogger,
	})
	if err != nil {
		return nil, err
	}

	// 3. Stores
	return &Container{
		Config:         cfg,
		Logger:         zapLogger,
		API:            api,
		Session:        store.NewSessionStore(api, zapLogger),
		Notebook:       store.NewNotebookStore(api, zapLogger),
		shutdownTracer: shutdownTracer,
	}, nil
}

// Close flushes session cookies, the log buffer and any pending trace
// spans. Cookie persistence comes first so a shutdown hiccup elsewhere
// cannot lose the session.
func (c *Container) Close(ctx context.Context) error {
	if err := c.API.SaveCookies(); err != nil {
		c.Logger.Warn("bootstrap", "failed to persist session cookies", map[string]interface{}{"error": err.Error()})
	}
	_ = c.Logger.Sync()
	return c.shutdownTracer(ctx)
}
