package router

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/gridnav/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/gridnav/pkg/http/router/routerhelper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Config struct {
	Port    int
	Timeout time.Duration

	RateLimit float64
	RateBurst int

	ReadTimeout       time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
}

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Handler builds the full middleware chain around the path routes, /metrics and /healthz.
func (api *API) Handler(config Config, useRateLimit bool, pathService controllers.PathService) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	group := router_helper.NewRouteGroup(router, "/api")

	pathRoutes := controllers.New(pathService, api.log)

	pathRoutes.Routes(group)

	var mwChain []alice.Constructor
	mwChain = append(mwChain, corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		Heartbeat("healthz"), Logger(api.log))
	if useRateLimit {
		mwChain = append(mwChain, Limit(config.RateLimit, config.RateBurst))
	}
	return alice.New(mwChain...).Then(router)
}

// Run serves the api until ctx is cancelled or the listener fails.
func (api *API) Run(
	ctx context.Context,
	config Config,
	useRateLimit bool,
	pathService controllers.PathService,
) error {
	api.log.Info("Run httprouter API")

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: api.Handler(config, useRateLimit, pathService),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadTimeout:       config.ReadTimeout,
		WriteTimeout:      config.Timeout,
		IdleTimeout:       config.IdleTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		api.log.Error("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
