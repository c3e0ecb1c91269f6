// Package app assembles repositories and services shared by the server and worker.
package app

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/config"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/logger"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/mailchimp"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/repository"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/service"
)

type App struct {
	Sync     *service.SyncService
	Resync   *service.ResyncService
	Settings *service.SettingsService
	Hooks    *service.Hooks
}

func New(cfg config.Config, conn *sql.DB, base *zap.Logger) *App {
	syncLog := logger.Sync(base)

	purchaseRepo := &repository.PurchaseRepository{DB: conn}
	contactRepo := &repository.ContactRepository{DB: conn}
	settingsRepo := &repository.SettingsRepository{DB: conn}

	client := mailchimp.NewClient(cfg.Mailchimp.Timeout, cfg.Mailchimp.RatePerSecond, syncLog)

	syncService := &service.SyncService{
		PurchaseRepo: purchaseRepo,
		ContactRepo:  contactRepo,
		SettingsRepo: settingsRepo,
		Mailchimp:    client,
		Module:       cfg.Hooks.ModuleName,
		Log:          syncLog,
	}
	resyncService := &service.ResyncService{
		PurchaseRepo: purchaseRepo,
		ContactRepo:  contactRepo,
		Syncer:       syncService,
		Log:          syncLog,
	}
	settingsService := service.NewSettingsService(settingsRepo, resyncService, cfg.Hooks.ModuleName, syncLog)

	return &App{
		Sync:     syncService,
		Resync:   resyncService,
		Settings: settingsService,
		Hooks: &service.Hooks{
			PurchaseRepo:     purchaseRepo,
			Syncer:           syncService,
			Settings:         settingsService,
			PurchaseTemplate: cfg.Hooks.PurchaseTemplate,
			Module:           cfg.Hooks.ModuleName,
			Log:              syncLog,
		},
	}
}
