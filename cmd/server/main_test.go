package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/controller"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/handler"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/service"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/session"
)

type memSettings struct {
	cfg model.SyncConfig
}

func (m *memSettings) Load(ctx context.Context, module string) (*model.SyncConfig, error) {
	cfg := m.cfg
	return &cfg, nil
}

func (m *memSettings) Save(ctx context.Context, module string, cfg *model.SyncConfig) error {
	m.cfg = *cfg
	return nil
}

type noResync struct{}

func (noResync) Run(ctx context.Context, f model.ResyncFilter) (*model.ResyncReport, error) {
	return &model.ResyncReport{RunID: "r", Mode: f.Mode()}, nil
}

func TestRouterWiring(t *testing.T) {
	settings := service.NewSettingsService(&memSettings{cfg: model.SyncConfig{AudienceID: "list"}}, noResync{}, "mod", nil)
	reports := session.ReportFlash{Store: session.NewStore("secret", t.TempDir(), false)}
	r := newRouter(
		&controller.SettingsController{SettingsService: settings, Reports: reports, Log: zap.NewNop()},
		&handler.HookHandler{Hooks: &service.Hooks{Settings: settings, Module: "mod", PurchaseTemplate: "purchase"}, Reports: reports, Log: zap.NewNop()},
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mailchimpAudienceId":"list"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hooks/record-saved", strings.NewReader(`{"template":"page","id":1}`)))
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resync/report", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/settings", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
