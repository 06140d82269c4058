package http

import (
	"context"

	http_router "github.com/lintang-b-s/gridnav/pkg/http/router"
	"github.com/lintang-b-s/gridnav/pkg/http/router/controllers"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

func ReadConfig() http_router.Config {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "60s")
	viper.SetDefault("API_RATE_LIMIT", 100.0)
	viper.SetDefault("API_RATE_BURST", 200)
	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", "120s")
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", "5s")

	return http_router.Config{
		Port:              viper.GetInt("API_PORT"),
		Timeout:           viper.GetDuration("API_TIMEOUT"),
		RateLimit:         viper.GetFloat64("API_RATE_LIMIT"),
		RateBurst:         viper.GetInt("API_RATE_BURST"),
		ReadTimeout:       viper.GetDuration("HTTP_SERVER_READ_TIMEOUT"),
		IdleTimeout:       viper.GetDuration("HTTP_SERVER_IDLE_TIMEOUT"),
		ReadHeaderTimeout: viper.GetDuration("HTTP_SERVER_READ_HEADER_TIMEOUT"),
	}
}

// Use runs the api and blocks until ctx is cancelled or the server fails.
func (s *Server) Use(
	ctx context.Context,
	useRateLimit bool,
	pathService controllers.PathService,
) error {
	config := ReadConfig()

	server := http_router.NewAPI(s.Log)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gCtx, config, useRateLimit, pathService)
	})

	return g.Wait()
}
