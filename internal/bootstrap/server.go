package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verastro/roombroker/api"
	"github.com/verastro/roombroker/config"
	"github.com/verastro/roombroker/internal/service/booking"
	"github.com/verastro/roombroker/internal/service/search"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, searchSvc search.SearchUseCase, bookingSvc booking.BookingUseCase, logger *zap.Logger) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(searchSvc, bookingSvc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	logger.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(searchSvc search.SearchUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	bookingHandler := api.NewBookingHandler(bookingSvc, searchSvc)

	api.NewAvailabilityHandler(searchSvc).Register(router.Group("/v1/searches"))
	bookingHandler.Register(router.Group("/v1/bookings"))
	bookingHandler.RegisterCallbacks(router.Group("/v1/callbacks"))

	return router
}
