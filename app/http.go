package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/config"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/logger"
)

// serveHTTP runs the API server until ctx is canceled.
func serveHTTP(ctx context.Context, cfg config.ServerConfig, h http.Handler, log logger.Logger) error {
	srv := &http.Server{Addr: cfg.Addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("http server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving route API on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
