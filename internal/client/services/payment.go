package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fincatch/fincatch/internal/client/models"
	"github.com/fincatch/fincatch/internal/client/repositories/entries"
	"github.com/fincatch/fincatch/internal/client/repositories/payments"
	"github.com/fincatch/fincatch/internal/common"
	"github.com/fincatch/fincatch/internal/finance"
)

type PaymentService interface {
	// Add records a received coupon for a bond entry.
	Add(ctx context.Context, p *models.CouponPayment) error
	Get(ctx context.Context, id string) (*models.CouponPayment, error)
	ListByEntry(ctx context.Context, entryID string) ([]models.CouponPayment, error)
	Update(ctx context.Context, p *models.CouponPayment) error
	Delete(ctx context.Context, id string) error
	// Prefill projects the coupon schedule of a bond entry into payment
	// drafts the caller can review and Add. Nothing is persisted.
	Prefill(ctx context.Context, entryID string) ([]models.CouponPayment, error)
}

type paymentService struct {
	paymentRepo payments.Repository
	entryRepo   entries.Repository
}

func NewPaymentService(paymentRepo payments.Repository, entryRepo entries.Repository) PaymentService {
	return &paymentService{paymentRepo: paymentRepo, entryRepo: entryRepo}
}

// bondEntry loads the parent entry and checks it is an active bond.
func (s *paymentService) bondEntry(ctx context.Context, entryID string) (*models.Entry, error) {
	e, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", entryID, err)
	}
	if e.Deleted {
		return nil, fmt.Errorf("entry %s: %w", entryID, common.ErrNotFound)
	}
	if e.AssetType != models.AssetTypeBond {
		return nil, fmt.Errorf("entry %s is not a bond: %w", entryID, common.ErrInvalidAssetType)
	}
	return e, nil
}

func (s *paymentService) Add(ctx context.Context, p *models.CouponPayment) error {
	if !finance.IsValidCurrency(p.Currency) {
		return fmt.Errorf("currency %q: %w", p.Currency, common.ErrInvalidCurrency)
	}
	if _, err := s.bondEntry(ctx, p.EntryID); err != nil {
		return err
	}

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().Unix()
	p.SyncVersion = 1
	p.SyncedAt = nil
	p.Deleted = false
	p.DeletedAt = nil

	if err := s.paymentRepo.Insert(ctx, p); err != nil {
		return fmt.Errorf("saving payment: %w", err)
	}
	return nil
}

func (s *paymentService) Get(ctx context.Context, id string) (*models.CouponPayment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *paymentService) ListByEntry(ctx context.Context, entryID string) ([]models.CouponPayment, error) {
	return s.paymentRepo.ListByEntry(ctx, entryID)
}

func (s *paymentService) Update(ctx context.Context, p *models.CouponPayment) error {
	if !finance.IsValidCurrency(p.Currency) {
		return fmt.Errorf("currency %q: %w", p.Currency, common.ErrInvalidCurrency)
	}
	return s.paymentRepo.Update(ctx, p)
}

func (s *paymentService) Delete(ctx context.Context, id string) error {
	return s.paymentRepo.SoftDelete(ctx, id, time.Now().Unix())
}

func (s *paymentService) Prefill(ctx context.Context, entryID string) ([]models.CouponPayment, error) {
	e, err := s.bondEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	schedule, err := finance.Schedule(e)
	if err != nil {
		return nil, err
	}

	currency := ""
	if e.Currency != nil {
		currency = *e.Currency
	}

	drafts := make([]models.CouponPayment, 0, len(schedule))
	for _, sp := range schedule {
		amount, _ := sp.Amount.Float64()
		drafts = append(drafts, models.CouponPayment{
			EntryID:     e.ID,
			PaymentDate: sp.Date.Unix(),
			Amount:      amount,
			Currency:    currency,
		})
	}
	return drafts, nil
}
