// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/app"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/config"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/controller"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/db"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/handler"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/logger"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	conn, err := db.Open(context.Background(), cfg.Database.URL, zl)
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	a := app.New(cfg, conn, zl)
	reports := session.ReportFlash{Store: session.NewStore(cfg.Session.Secret, cfg.Session.Dir, false)}

	settingsController := &controller.SettingsController{
		SettingsService: a.Settings,
		Reports:         reports,
		Log:             zl,
	}
	hookHandler := &handler.HookHandler{
		Hooks:   a.Hooks,
		Reports: reports,
		Log:     zl,
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zl.Info("server running", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, newRouter(settingsController, hookHandler)); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func newRouter(settings *controller.SettingsController, hooks *handler.HookHandler) http.Handler {
	r := chi.NewRouter()

	// Admin settings
	r.Get("/settings", settings.GetSettings)
	r.Put("/settings", settings.UpdateSettings)
	r.Get("/resync/report", settings.GetResyncReport)

	// Host notifications
	r.Post("/hooks/record-saved", hooks.RecordSaved)
	r.Post("/hooks/config-saved", hooks.ConfigSaved)

	r.Handle("/metrics", promhttp.Handler())
	return r
}
