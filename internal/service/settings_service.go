package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/repository"
)

const maskedPrefix = "****"

// ResyncRunner is implemented by ResyncService.
type ResyncRunner interface {
	Run(ctx context.Context, f model.ResyncFilter) (*model.ResyncReport, error)
}

type SettingsService struct {
	Repo     repository.SettingsRepositoryInterface
	Resync   ResyncRunner
	Module   string
	Validate *validator.Validate
	Log      *zap.Logger
}

func NewSettingsService(repo repository.SettingsRepositoryInterface, resync ResyncRunner, module string, log *zap.Logger) *SettingsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsService{
		Repo:     repo,
		Resync:   resync,
		Module:   module,
		Validate: validator.New(),
		Log:      log,
	}
}

func (s *SettingsService) Get(ctx context.Context) (*model.SyncConfig, error) {
	return s.Repo.Load(ctx, s.Module)
}

// Save persists cfg. Only a true ResyncRun starts a bulk run; the flag is
// then cleared and the config saved again, which cannot trigger another run.
func (s *SettingsService) Save(ctx context.Context, cfg *model.SyncConfig) (*model.ResyncReport, error) {
	if err := s.Validate.Struct(cfg); err != nil {
		return nil, err
	}

	if strings.HasPrefix(cfg.APIKey, maskedPrefix) {
		current, err := s.Repo.Load(ctx, s.Module)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		cfg.APIKey = current.APIKey
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.AudienceID = strings.TrimSpace(cfg.AudienceID)
	cfg.ResyncEmail = strings.TrimSpace(cfg.ResyncEmail)

	if err := s.Repo.Save(ctx, s.Module, cfg); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	if !cfg.ResyncRun {
		return nil, nil
	}

	report, runErr := s.Resync.Run(ctx, cfg.ResyncFilter())

	cfg.ResyncRun = false
	if err := s.Repo.Save(ctx, s.Module, cfg); err != nil {
		s.Log.Error("failed to reset resync flag", zap.Error(err))
		if runErr == nil {
			runErr = fmt.Errorf("reset resync flag: %w", err)
		}
	}
	return report, runErr
}
