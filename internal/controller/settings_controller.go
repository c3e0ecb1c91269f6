// internal/controller/settings_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/service"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/session"
)

// SettingsController serves the admin settings form and the resync report.
type SettingsController struct {
	SettingsService *service.SettingsService
	Reports         session.ReportFlash
	Log             *zap.Logger
}

func (c *SettingsController) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.SettingsService.Get(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Masked())
}

// UpdateSettings saves the form. When resyncRun is set the run happens inline,
// its report is returned and also kept for one read at /resync/report.
func (c *SettingsController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body model.SyncConfig
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	report, err := c.SettingsService.Save(r.Context(), &body)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		http.Error(w, ve.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		c.Log.Error("save settings failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"settings": body.Masked(),
	}
	if report != nil {
		text := report.String()
		if err := c.Reports.Put(w, r, text); err != nil {
			c.Log.Warn("failed to store resync report", zap.Error(err))
		}
		resp["report"] = text
		resp["totals"] = map[string]int{
			"synced":    report.Synced,
			"skipped":   report.Skipped,
			"errors":    report.Errors,
			"wouldSync": report.WouldSync,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetResyncReport shows the last report once; later reads get 204.
func (c *SettingsController) GetResyncReport(w http.ResponseWriter, r *http.Request) {
	report, ok, err := c.Reports.Pop(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
