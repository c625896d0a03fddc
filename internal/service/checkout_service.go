package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fabrication-service/internal/cache"
	"fabrication-service/internal/checkout"
	"fabrication-service/internal/pricing"
	"fabrication-service/internal/producer"
	"fabrication-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckoutConfig struct {
	Enabled         bool
	IdempotencyTTL  time.Duration
	LockTTL         time.Duration
	DesignTeamEmail string
}

type checkoutService struct {
	cfg    CheckoutConfig
	repo   *repository.Repository
	orders checkout.OrderService
	cache  CheckoutCache
	email  EmailProducer
	log    *zap.Logger
}

func NewCheckoutService(
	cfg CheckoutConfig,
	repo *repository.Repository,
	orders checkout.OrderService,
	cache CheckoutCache,
	email EmailProducer,
	log *zap.Logger,
) CheckoutService {
	return &checkoutService{cfg: cfg, repo: repo, orders: orders, cache: cache, email: email, log: log}
}

// Checkout submits the session's cart as one draft order. A result already
// stored under the same idempotency key is returned without contacting the
// order service again. The order request is sent at most once; a lost
// response surfaces as checkout.ErrNetwork and is not resubmitted.
func (s *checkoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if !s.cfg.Enabled {
		return nil, ErrCheckoutUnavailable
	}
	sid, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	key := in.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	} else if res := s.replay(ctx, sid, key); res != nil {
		return res, nil
	}

	if s.cache != nil {
		release, ok, err := s.cache.AcquireCheckoutLock(ctx, sid, s.cfg.LockTTL)
		if err != nil {
			s.log.Warn("checkout lock unavailable, continuing without it", zap.String("session_id", sid), zap.Error(err))
		} else if !ok {
			return nil, ErrCheckoutInProgress
		} else {
			defer release()
		}
	}

	items, err := s.repo.CartItems.ListBySession(ctx, sid)
	if err != nil {
		return nil, err
	}

	draftIn, err := checkout.Compose(sid, items, in.Options)
	if err != nil {
		s.log.Info("checkout rejected", zap.String("session_id", sid), zap.Error(err))
		return nil, err
	}
	draftIn.Email = in.Email
	draftIn.IdempotencyKey = key

	order, err := s.orders.CreateDraftOrder(ctx, draftIn)
	if err != nil {
		s.log.Error("draft order creation failed",
			zap.String("session_id", sid), zap.String("idempotency_key", key), zap.Error(err))
		return nil, err
	}

	res := &CheckoutResult{Order: *order, IdempotencyKey: key}
	s.remember(ctx, sid, res)

	s.log.Info("draft order created",
		zap.String("session_id", sid),
		zap.String("order_id", order.ID),
		zap.String("order_name", order.Name),
		zap.String("local_total", pricing.FormatCents(pricing.TotalCents(items, in.Options))),
		zap.String("remote_total", order.TotalPrice),
	)

	if in.Options.Multicolor || in.Options.Assistance {
		s.notifyDesignTeam(ctx, sid, res, in)
	}
	return res, nil
}

func (s *checkoutService) replay(ctx context.Context, sid, key string) *CheckoutResult {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.GetCheckoutResult(ctx, sid, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("checkout cache read failed", zap.Error(err))
		}
		return nil
	}
	var res CheckoutResult
	if err := json.Unmarshal(data, &res); err != nil {
		s.log.Warn("discarding unreadable cached checkout", zap.Error(err))
		return nil
	}
	res.Replayed = true
	s.log.Info("replaying checkout result", zap.String("session_id", sid), zap.String("idempotency_key", key))
	return &res
}

func (s *checkoutService) remember(ctx context.Context, sid string, res *CheckoutResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.SetCheckoutResult(ctx, sid, res.IdempotencyKey, data, s.cfg.IdempotencyTTL); err != nil {
		s.log.Warn("failed to cache checkout result", zap.Error(err))
	}
}

// notifyDesignTeam flags orders that need manual preparation.
func (s *checkoutService) notifyDesignTeam(ctx context.Context, sid string, res *CheckoutResult, in CheckoutInput) {
	if s.email == nil || s.cfg.DesignTeamEmail == "" {
		return
	}
	msg := producer.EmailMessage{
		To:       s.cfg.DesignTeamEmail,
		Subject:  "Order " + res.Order.Name + " needs design review",
		Template: "design_review",
		Data: map[string]any{
			"order_id":    res.Order.ID,
			"order_name":  res.Order.Name,
			"invoice_url": res.Order.InvoiceURL,
			"multicolor":  in.Options.Multicolor,
			"assistance":  in.Options.Assistance,
			"comments":    in.Options.Comments,
			"customer":    in.Email,
			"session_id":  sid,
		},
	}
	if err := s.email.SendEmail(ctx, res.Order.ID, msg); err != nil {
		s.log.Error("failed to notify design team", zap.String("order_id", res.Order.ID), zap.Error(err))
	}
}
