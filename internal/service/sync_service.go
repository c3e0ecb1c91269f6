package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/mailchimp"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/metrics"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/repository"
)

type Outcome string

const (
	OutcomeSynced  Outcome = "synced"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Skip reasons
const (
	ReasonAlreadySynced = "already synced"
	ReasonNoOwner       = "no owning contact"
	ReasonNotBuyer      = "owner is not a buyer"
	ReasonNoEmail       = "contact has no email"
	ReasonNoTags        = "no tags"
)

type SyncResult struct {
	PurchaseID int
	Outcome    Outcome
	Reason     string
	Email      string
	Tags       []string
	Err        error
}

func skipped(id int, reason string) SyncResult {
	return SyncResult{PurchaseID: id, Outcome: OutcomeSkipped, Reason: reason}
}

// Subscriber is the Mailchimp side of a sync.
type Subscriber interface {
	Subscribe(ctx context.Context, s mailchimp.Settings, m mailchimp.Member) error
}

type SyncService struct {
	PurchaseRepo repository.PurchaseRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	SettingsRepo repository.SettingsRepositoryInterface
	Mailchimp    Subscriber
	Module       string
	Log          *zap.Logger
	Now          func() time.Time
}

// SyncPurchase is the automatic path: purchases already carrying a marker are skipped.
func (s *SyncService) SyncPurchase(ctx context.Context, p *model.Purchase) SyncResult {
	return s.sync(ctx, p, false)
}

// ResyncPurchase runs the same sequence but ignores an existing marker.
func (s *SyncService) ResyncPurchase(ctx context.Context, p *model.Purchase) SyncResult {
	return s.sync(ctx, p, true)
}

func (s *SyncService) sync(ctx context.Context, p *model.Purchase, force bool) (res SyncResult) {
	log := s.logger()
	defer func() {
		if r := recover(); r != nil {
			res = SyncResult{Outcome: OutcomeFailed, Err: fmt.Errorf("panic: %v", r)}
			if p != nil {
				res.PurchaseID = p.ID
			}
		}
		if res.Outcome == OutcomeFailed {
			log.Error("purchase sync failed", zap.Int("purchase_id", res.PurchaseID), zap.Error(res.Err))
		}
		metrics.PurchaseSyncs.WithLabelValues(string(res.Outcome)).Inc()
	}()

	if p == nil {
		return SyncResult{Outcome: OutcomeFailed, Err: fmt.Errorf("nil purchase")}
	}
	if !force && p.Synced() {
		return skipped(p.ID, ReasonAlreadySynced)
	}

	contact, res, ok := s.buyer(ctx, p.ID, p)
	if !ok {
		return res
	}

	first, last := SplitName(displayName(contact.Name, contact.Email))
	tags := ExtractTags(p)
	if len(tags) == 0 {
		res := skipped(p.ID, ReasonNoTags)
		res.Email = contact.Email
		return res
	}

	cfg, err := s.SettingsRepo.Load(ctx, s.Module)
	if err != nil {
		return s.failed(p.ID, contact.Email, tags, fmt.Errorf("load settings: %w", err))
	}

	err = s.Mailchimp.Subscribe(ctx, mailchimp.Settings{
		APIKey:          cfg.APIKey,
		AudienceID:      cfg.AudienceID,
		CreateIfMissing: cfg.CreateIfMissing,
	}, mailchimp.Member{
		Email:     contact.Email,
		FirstName: first,
		LastName:  last,
		Tags:      tags,
	})
	if err != nil {
		return s.failed(p.ID, contact.Email, tags, err)
	}

	now := s.now()
	if err := s.PurchaseRepo.MarkSynced(ctx, p.ID, now); err != nil {
		return s.failed(p.ID, contact.Email, tags, fmt.Errorf("mark synced: %w", err))
	}
	p.SyncedAt = &now

	log.Info("purchase synced to mailchimp",
		zap.Int("purchase_id", p.ID),
		zap.String("email", contact.Email),
		zap.String("tags", strings.Join(tags, ", ")),
	)
	return SyncResult{PurchaseID: p.ID, Outcome: OutcomeSynced, Email: contact.Email, Tags: tags}
}

// buyer resolves the owning contact; ok is false when the purchase must be skipped or failed.
func (s *SyncService) buyer(ctx context.Context, id int, owned model.Owned) (*model.Contact, SyncResult, bool) {
	ownerID, has := owned.OwnerID()
	if !has {
		return nil, skipped(id, ReasonNoOwner), false
	}
	contact, err := s.ContactRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, s.failed(id, "", nil, fmt.Errorf("load contact %d: %w", ownerID, err)), false
	}
	if contact == nil {
		return nil, skipped(id, ReasonNoOwner), false
	}
	if contact.Kind != model.ContactKindBuyer {
		return nil, skipped(id, ReasonNotBuyer), false
	}
	if strings.TrimSpace(contact.Email) == "" {
		return nil, skipped(id, ReasonNoEmail), false
	}
	return contact, SyncResult{}, true
}

func (s *SyncService) failed(id int, email string, tags []string, err error) SyncResult {
	return SyncResult{PurchaseID: id, Outcome: OutcomeFailed, Email: email, Tags: tags, Err: err}
}

func (s *SyncService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *SyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
