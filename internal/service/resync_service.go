package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/metrics"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/repository"
)

// endOfDay stretches the "to" bound over the whole last day.
const endOfDay = 86399 * time.Second

// PurchaseResyncer is the part of SyncService a bulk run needs.
type PurchaseResyncer interface {
	ResyncPurchase(ctx context.Context, p *model.Purchase) SyncResult
}

type ResyncService struct {
	PurchaseRepo repository.PurchaseRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	Syncer       PurchaseResyncer
	Log          *zap.Logger
}

// BuildQuery turns admin filters into a purchase selector. An email that
// matches no contact selects nothing.
func (s *ResyncService) BuildQuery(ctx context.Context, f model.ResyncFilter) (repository.PurchaseQuery, error) {
	q := repository.PurchaseQuery{Limit: repository.MaxResyncRecords}
	if f.From != nil {
		from := *f.From
		q.From = &from
	}
	if f.To != nil {
		to := f.To.Add(endOfDay)
		q.To = &to
	}

	email := strings.TrimSpace(f.Email)
	if email == "" {
		return q, nil
	}
	contact, err := s.ContactRepo.GetByEmail(ctx, email)
	if err != nil {
		return q, fmt.Errorf("lookup contact %q: %w", email, err)
	}
	if contact == nil {
		q.None = true
		return q, nil
	}
	q.ContactID = &contact.ID
	return q, nil
}

// Run processes every selected purchase sequentially and reports per item.
// Item failures land in the report; only a failed query returns an error.
func (s *ResyncService) Run(ctx context.Context, f model.ResyncFilter) (*model.ResyncReport, error) {
	log := s.logger()
	report := &model.ResyncReport{
		RunID:   uuid.NewString(),
		Mode:    f.Mode(),
		Filters: describeFilter(f),
		DryRun:  f.DryRun,
	}
	metrics.ResyncRuns.WithLabelValues(report.Mode).Inc()

	q, err := s.BuildQuery(ctx, f)
	if err != nil {
		return nil, err
	}
	report.Selector = q.String()

	purchases, err := s.PurchaseRepo.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find purchases: %w", err)
	}

	emails := map[int]string{}
	for _, p := range purchases {
		email := s.buyerEmail(ctx, p, emails)

		if f.UnsyncedOnly && p.Synced() {
			report.Skipped++
			report.Addf(p.PurchasedAt, "#%d %s skip (already synced)", p.ID, email)
			log.Info("resync item", zap.Int("purchase_id", p.ID), zap.String("result", "skip (already synced)"))
			continue
		}

		if f.DryRun {
			tags := ExtractTags(p)
			report.WouldSync++
			report.Addf(p.PurchasedAt, "#%d %s would sync tags=[%s]", p.ID, email, strings.Join(tags, ", "))
			log.Info("resync item", zap.Int("purchase_id", p.ID), zap.String("result", "would sync"))
			continue
		}

		res := s.Syncer.ResyncPurchase(ctx, p)
		if res.Email != "" {
			email = res.Email
		}
		switch res.Outcome {
		case OutcomeSynced:
			report.Synced++
			report.Addf(p.PurchasedAt, "#%d %s synced tags=[%s]", p.ID, email, strings.Join(res.Tags, ", "))
		case OutcomeSkipped:
			report.Skipped++
			report.Addf(p.PurchasedAt, "#%d %s skipped (%s)", p.ID, email, res.Reason)
		default:
			report.Errors++
			report.Addf(p.PurchasedAt, "#%d %s error: %v", p.ID, email, res.Err)
		}
		log.Info("resync item",
			zap.Int("purchase_id", p.ID),
			zap.String("result", string(res.Outcome)),
			zap.String("reason", res.Reason),
			zap.Error(res.Err),
		)
	}

	log.Info("resync finished", zap.String("run_id", report.RunID), zap.String("totals", report.Totals()))
	return report, nil
}

// buyerEmail is best effort and only used for report lines.
func (s *ResyncService) buyerEmail(ctx context.Context, p *model.Purchase, cache map[int]string) string {
	id, ok := p.OwnerID()
	if !ok {
		return "-"
	}
	if email, hit := cache[id]; hit {
		return email
	}
	email := "-"
	if c, err := s.ContactRepo.GetByID(ctx, id); err == nil && c != nil && c.Email != "" {
		email = c.Email
	}
	cache[id] = email
	return email
}

func describeFilter(f model.ResyncFilter) string {
	day := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format("2006-01-02")
	}
	email := f.Email
	if email == "" {
		email = "-"
	}
	return fmt.Sprintf("from=%s to=%s email=%s unsyncedOnly=%t dryRun=%t",
		day(f.From), day(f.To), email, f.UnsyncedOnly, f.DryRun)
}

func (s *ResyncService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
