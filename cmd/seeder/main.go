// cmd/seeder/main.go
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/config"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/db"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/logger"
)

func main() {
	cfg, err := config.LoadForWorker()
	if err != nil {
		panic(err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer zl.Sync()

	conn, err := db.Open(context.Background(), cfg.Database.URL, zl)
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	seedFiles := []string{
		"seed/schema.sql",
		"seed/demo.sql",
	}
	if len(os.Args) > 1 && os.Args[1] == "schema" {
		seedFiles = seedFiles[:1]
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			zl.Fatal("failed to read seed file", zap.String("file", file), zap.Error(err))
		}

		if _, err := conn.Exec(string(content)); err != nil {
			zl.Fatal("failed to execute seed file", zap.String("file", file), zap.Error(err))
		}
		zl.Info("seeded", zap.String("file", file))
	}

	zl.Info("database seeding completed")
}
