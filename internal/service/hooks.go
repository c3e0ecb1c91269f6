package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/purchase-mailchimp-sync/internal/errors"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/repository"
)

// PurchaseSyncer is the automatic sync path.
type PurchaseSyncer interface {
	SyncPurchase(ctx context.Context, p *model.Purchase) SyncResult
}

// Hooks are the two entry points the outside world calls: a record was
// saved, or this module's configuration was saved.
type Hooks struct {
	PurchaseRepo     repository.PurchaseRepositoryInterface
	Syncer           PurchaseSyncer
	Settings         *SettingsService
	PurchaseTemplate string
	Module           string
	Log              *zap.Logger
}

// OnRecordSaved syncs purchase records and ignores every other template.
// handled is false for ignored events.
func (h *Hooks) OnRecordSaved(ctx context.Context, ev model.RecordSavedEvent) (res SyncResult, handled bool) {
	if ev.Template != h.PurchaseTemplate {
		return SyncResult{}, false
	}
	p, err := h.PurchaseRepo.GetByID(ctx, ev.ID)
	if err != nil {
		h.logger().Error("purchase sync failed", zap.Int("purchase_id", ev.ID), zap.Error(err))
		return SyncResult{PurchaseID: ev.ID, Outcome: OutcomeFailed, Err: err}, true
	}
	return h.Syncer.SyncPurchase(ctx, p), true
}

// OnConfigSaved overlays values on the stored config and saves it. Values
// for other modules are ignored.
func (h *Hooks) OnConfigSaved(ctx context.Context, module string, values map[string]any) (*model.ResyncReport, error) {
	if module != h.Module {
		return nil, nil
	}
	cfg, err := h.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	normalized, err := normalizeValues(values)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return h.Settings.Save(ctx, cfg)
}

var (
	boolSettings  = map[string]bool{"createIfMissing": true, "resyncDryRun": true, "resyncUnsyncedOnly": true, "resyncRun": true}
	epochSettings = map[string]bool{"resyncFrom": true, "resyncTo": true}
)

// normalizeValues coerces form-style values (checkbox "1"/"on", numeric
// strings, empty fields) into the JSON types SyncConfig expects.
func normalizeValues(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for key, v := range values {
		var (
			val any
			err error
		)
		switch {
		case boolSettings[key]:
			val, err = toBool(v)
		case epochSettings[key]:
			val, err = toEpoch(v)
		default:
			val, err = cast.ToStringE(v)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", appErrors.ErrInvalidSettings, key, err)
		}
		out[key] = val
	}
	return out, nil
}

func toBool(v any) (bool, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "off", "no":
			return false, nil
		case "on", "yes":
			return true, nil
		}
	}
	if v == nil {
		return false, nil
	}
	return cast.ToBoolE(v)
}

func toEpoch(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return cast.ToInt64E(v)
}

func (h *Hooks) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}
