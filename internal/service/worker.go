package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
)

// RecordHook handles one record-saved event.
type RecordHook interface {
	OnRecordSaved(ctx context.Context, ev model.RecordSavedEvent) (SyncResult, bool)
}

// Worker processes record-saved events one at a time
type Worker struct {
	Hook RecordHook
	Jobs <-chan model.RecordSavedEvent
	Log  *zap.Logger
}

// Constructor
func NewWorker(hook RecordHook, jobs <-chan model.RecordSavedEvent, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		Hook: hook,
		Jobs: jobs,
		Log:  log,
	}
}

// Start runs until the job channel closes or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Jobs:
			if !ok {
				return
			}
			res, handled := w.Hook.OnRecordSaved(ctx, ev)
			if !handled {
				w.Log.Debug("ignored record", zap.String("template", ev.Template), zap.Int("id", ev.ID))
				continue
			}
			w.Log.Debug("record processed",
				zap.Int("purchase_id", res.PurchaseID),
				zap.String("outcome", string(res.Outcome)),
			)
		}
	}
}
