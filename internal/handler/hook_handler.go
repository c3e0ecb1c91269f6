// internal/handler/hook_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/purchase-mailchimp-sync/internal/errors"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/service"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/session"
)

// HookHandler receives record-saved and config-saved notifications
type HookHandler struct {
	Hooks   *service.Hooks
	Reports session.ReportFlash
	Log     *zap.Logger
}

// RecordSaved never reports a sync failure to the caller as an HTTP error;
// the outcome is in the body.
func (h *HookHandler) RecordSaved(w http.ResponseWriter, r *http.Request) {
	var ev model.RecordSavedEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, handled := h.Hooks.OnRecordSaved(r.Context(), ev)
	resp := map[string]interface{}{"handled": handled}
	if handled {
		resp["purchase_id"] = res.PurchaseID
		resp["outcome"] = res.Outcome
		if res.Reason != "" {
			resp["reason"] = res.Reason
		}
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (h *HookHandler) ConfigSaved(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Module string                 `json:"module"`
		Values map[string]interface{} `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.Hooks.OnConfigSaved(r.Context(), payload.Module, payload.Values)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		http.Error(w, ve.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, appErrors.ErrInvalidSettings) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.Log.Error("config hook failed", zap.String("module", payload.Module), zap.Error(err))
		http.Error(w, "failed to save config: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{"resync": report != nil}
	if report != nil {
		text := report.String()
		if err := h.Reports.Put(w, r, text); err != nil {
			h.Log.Warn("failed to store resync report", zap.Error(err))
		}
		resp["report"] = text
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
