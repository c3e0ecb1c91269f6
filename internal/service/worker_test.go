package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/service"
)

// MockHook stores events in memory
type MockHook struct {
	mu     sync.Mutex
	events []model.RecordSavedEvent
}

func (m *MockHook) OnRecordSaved(ctx context.Context, ev model.RecordSavedEvent) (service.SyncResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return service.SyncResult{PurchaseID: ev.ID, Outcome: service.OutcomeSynced}, ev.Template == "purchase"
}

func TestWorker(t *testing.T) {
	hook := &MockHook{}
	jobs := make(chan model.RecordSavedEvent, 2)
	jobs <- model.RecordSavedEvent{Template: "purchase", ID: 1}
	jobs <- model.RecordSavedEvent{Template: "page", ID: 2}
	close(jobs)

	worker := service.NewWorker(hook, jobs, nil)

	// Start returns once the channel is drained and closed
	worker.Start(context.Background())

	assert.Len(t, hook.events, 2)
	assert.Equal(t, 1, hook.events[0].ID)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		service.NewWorker(&MockHook{}, make(chan model.RecordSavedEvent), nil).Start(ctx)
		close(done)
	}()
	<-done
}
