package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/service"
)

type MockResync struct {
	runs    []model.ResyncFilter
	onRun   func()
	failure error
}

func (m *MockResync) Run(ctx context.Context, f model.ResyncFilter) (*model.ResyncReport, error) {
	m.runs = append(m.runs, f)
	if m.onRun != nil {
		m.onRun()
	}
	if m.failure != nil {
		return nil, m.failure
	}
	return &model.ResyncReport{RunID: "run-1", Mode: f.Mode(), DryRun: f.DryRun}, nil
}

func TestSaveWithoutRunFlagDoesNotResync(t *testing.T) {
	repo := &MockSettingsRepo{}
	resync := &MockResync{}
	svc := service.NewSettingsService(repo, resync, "mod", nil)

	report, err := svc.Save(context.Background(), &model.SyncConfig{APIKey: " k-us1 ", AudienceID: "list"})
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Empty(t, resync.runs)
	require.Len(t, repo.saves, 1)
	assert.Equal(t, "k-us1", repo.cfg.APIKey)
}

func TestSaveWithRunFlagRunsOnceAndResets(t *testing.T) {
	repo := &MockSettingsRepo{}
	resync := &MockResync{}
	svc := service.NewSettingsService(repo, resync, "mod", nil)
	resync.onRun = func() {
		// the run sees the flag persisted as true
		assert.True(t, repo.cfg.ResyncRun)
	}

	report, err := svc.Save(context.Background(), &model.SyncConfig{
		APIKey:             "k-us1",
		AudienceID:         "list",
		ResyncRun:          true,
		ResyncDryRun:       true,
		ResyncUnsyncedOnly: true,
		ResyncFrom:         1704067200,
		ResyncTo:           1706659200,
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "dry-run", report.Mode)

	require.Len(t, resync.runs, 1)
	f := resync.runs[0]
	assert.True(t, f.DryRun)
	assert.True(t, f.UnsyncedOnly)
	require.NotNil(t, f.From)
	assert.Equal(t, int64(1704067200), f.From.Unix())
	assert.Equal(t, int64(1706659200), f.To.Unix())

	require.Len(t, repo.saves, 2)
	assert.False(t, repo.cfg.ResyncRun)
}

func TestSaveResetsFlagWhenRunFails(t *testing.T) {
	repo := &MockSettingsRepo{}
	resync := &MockResync{failure: errBoom}
	svc := service.NewSettingsService(repo, resync, "mod", nil)

	_, err := svc.Save(context.Background(), &model.SyncConfig{ResyncRun: true})
	require.ErrorIs(t, err, errBoom)
	assert.False(t, repo.cfg.ResyncRun)
}

func TestSaveKeepsStoredKeyWhenMasked(t *testing.T) {
	repo := &MockSettingsRepo{cfg: model.SyncConfig{APIKey: "secret-us2"}}
	svc := service.NewSettingsService(repo, &MockResync{}, "mod", nil)

	stored, err := svc.Get(context.Background())
	require.NoError(t, err)
	masked := stored.Masked()
	assert.Equal(t, "****-us2", masked.APIKey)

	_, err = svc.Save(context.Background(), &masked)
	require.NoError(t, err)
	assert.Equal(t, "secret-us2", repo.cfg.APIKey)
}

func TestSaveValidates(t *testing.T) {
	repo := &MockSettingsRepo{}
	svc := service.NewSettingsService(repo, &MockResync{}, "mod", nil)

	_, err := svc.Save(context.Background(), &model.SyncConfig{ResyncEmail: "not-an-email"})
	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve))

	_, err = svc.Save(context.Background(), &model.SyncConfig{ResyncFrom: 200, ResyncTo: 100})
	require.True(t, errors.As(err, &ve))
	assert.Empty(t, repo.saves)
}
