package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xela07ax/logdash/internal/connectors"
	"github.com/xela07ax/logdash/internal/infra"
)

// Локальная замена сервиса анализа: те же эндпоинты, детерминированный классификатор.
func main() {
	addr := flag.String("addr", ":5000", "listen address")
	latency := flag.Duration("latency", 300*time.Millisecond, "max simulated latency (0 disables)")
	flag.Parse()

	logger, err := infra.NewLogger(infra.LoggerConfig{Level: "info", Format: "console"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	mock := connectors.NewMockAnalysisService(*latency)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", mock.Routes())

	srv := &http.Server{
		Addr:         *addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("mock analysis service started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("mock analysis service exited properly")
}
