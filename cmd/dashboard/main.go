package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Mondli-02/union-dues-system/internal/auth"
	"github.com/Mondli-02/union-dues-system/internal/dashboard"
	"github.com/Mondli-02/union-dues-system/internal/directory"
	"github.com/Mondli-02/union-dues-system/internal/duesapi"
	"github.com/Mondli-02/union-dues-system/internal/infra"
	"github.com/Mondli-02/union-dues-system/internal/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	client, err := duesapi.NewClient(duesapi.Options{
		BaseURL:        cfg.RecordServiceURL,
		Logger:         &logger,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build record service client")
	}

	ctx := context.Background()
	dir := loadDirectory(ctx, cfg, client, logger)

	var authenticator auth.Authenticator
	switch cfg.AuthMode {
	case infra.AuthModeLocal:
		authenticator = auth.NewLocal(dir, logger)
	default:
		authenticator = auth.NewRemote(client, dir, logger)
	}

	state := dashboard.New(dashboard.Options{
		Authenticator: authenticator,
		API:           client,
		Logger:        &logger,
		NoticeTTL:     cfg.NoticeTTL,
	})

	app := &web.App{
		State:  state,
		Dir:    dir,
		Logger: logger,
		// The delegated-auth deployment never issues receipt numbers.
		OmitReceiptColumn: cfg.AuthMode == infra.AuthModeRemote,
	}
	router := web.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, logger, router)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// loadDirectory prefers the static credential document; when none is
// configured in remote mode it falls back to the record service's own
// institution list. Either source degrades to an empty directory.
func loadDirectory(ctx context.Context, cfg *infra.Config, client *duesapi.Client, logger infra.Logger) *directory.Directory {
	if cfg.DirectoryURL != "" || cfg.AuthMode == infra.AuthModeLocal {
		return directory.Load(ctx, directory.Options{
			URL:    cfg.DirectoryURL,
			Path:   cfg.DirectoryPath,
			Logger: &logger,
		})
	}
	institutions, err := client.GetInstitutions(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch institution list, continuing with empty directory")
		return directory.FromInstitutions(nil)
	}
	return directory.FromInstitutions(institutions)
}
