package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/observability"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

// errEndpointGone marks an endpoint the push service no longer recognises.
var errEndpointGone = errors.New("push endpoint gone")

// PushService manages device subscription descriptors and delivers reduced
// notification payloads to them.
type PushService interface {
	Subscribe(ctx context.Context, userID uint, req dto.PushSubscribeRequest, userAgent string) error
	Unsubscribe(ctx context.Context, userID uint, endpoint string) error
	PublicKey() string
	Deliver(ctx context.Context, userID uint, payload dto.PushPayload)
}

type pushService struct {
	repo       repository.PushSubscriptionRepository
	client     *http.Client
	publicKey  string
	perTimeout time.Duration
	logger     zerolog.Logger
}

// NewPushService constructs the push fallback. perTimeout bounds the total
// time spent on a single descriptor so one unreachable endpoint cannot
// stall delivery to the user's other devices.
func NewPushService(repo repository.PushSubscriptionRepository, client *http.Client, publicKey string, perTimeout time.Duration, logger zerolog.Logger) PushService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if perTimeout <= 0 {
		perTimeout = 5 * time.Second
	}

	return &pushService{
		repo:       repo,
		client:     client,
		publicKey:  publicKey,
		perTimeout: perTimeout,
		logger:     logger.With().Str("component", "push_service").Logger(),
	}
}

func (s *pushService) Subscribe(ctx context.Context, userID uint, req dto.PushSubscribeRequest, userAgent string) error {
	subscription := models.PushSubscription{
		UserID:    userID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: userAgent,
	}
	return s.repo.Upsert(ctx, &subscription)
}

func (s *pushService) Unsubscribe(ctx context.Context, userID uint, endpoint string) error {
	removed, err := s.repo.DeleteByEndpoint(ctx, userID, endpoint)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *pushService) PublicKey() string {
	return s.publicKey
}

// Deliver fans the payload out to every descriptor the user registered.
// Failures are isolated per descriptor: a gone endpoint removes itself,
// anything else is logged and the remaining devices still get their copy.
func (s *pushService) Deliver(ctx context.Context, userID uint, payload dto.PushPayload) {
	subscriptions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to list push subscriptions")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal push payload")
		return
	}

	for _, subscription := range subscriptions {
		outcome := s.deliverOne(ctx, subscription, body)
		observability.PushDeliveriesTotal().WithLabelValues(outcome).Inc()
	}
}

func (s *pushService) deliverOne(ctx context.Context, subscription models.PushSubscription, body []byte) string {
	deliverCtx, cancel := context.WithTimeout(ctx, s.perTimeout)
	defer cancel()

	err := retry.Do(
		func() error {
			return s.post(deliverCtx, subscription, body)
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.Context(deliverCtx),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, errEndpointGone)
		}),
	)

	switch {
	case err == nil:
		return "delivered"
	case errors.Is(err, errEndpointGone):
		// Stale registration: the push service told us this endpoint is
		// dead, so drop it rather than retry forever.
		if dErr := s.repo.DeleteByID(context.WithoutCancel(ctx), subscription.ID); dErr != nil {
			s.logger.Warn().Err(dErr).Uint("subscription_id", subscription.ID).Msg("failed to remove gone push subscription")
		}
		s.logger.Info().Uint("subscription_id", subscription.ID).Str("endpoint", subscription.Endpoint).Msg("removed gone push subscription")
		return "gone"
	default:
		s.logger.Warn().Err(err).Uint("subscription_id", subscription.ID).Msg("push delivery failed")
		return "failed"
	}
}

func (s *pushService) post(ctx context.Context, subscription models.PushSubscription, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, subscription.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", "60")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return errEndpointGone
	default:
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
}
