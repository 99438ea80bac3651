package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/realtime"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

// StreamService runs the broadcast lifecycle: scheduled, live, ended. Live
// transitions fan out to followers; viewer counts come from room membership
// and are never persisted.
type StreamService interface {
	Create(ctx context.Context, hostID uint, req dto.StreamCreateRequest) (dto.StreamResponse, error)
	Get(ctx context.Context, id uint) (dto.StreamResponse, error)
	Start(ctx context.Context, userID, streamID uint) (dto.StreamResponse, error)
	End(ctx context.Context, userID uint, userRole string, streamID uint, req dto.StreamEndRequest) (dto.StreamResponse, error)
	ListLive(ctx context.Context, category string, page, limit int) ([]dto.StreamResponse, error)
	ListScheduled(ctx context.Context, page, limit int) ([]dto.StreamResponse, error)
	ListRecordings(ctx context.Context, page, limit int) ([]dto.StreamResponse, error)
}

type streamService struct {
	streams       repository.StreamRepository
	follows       repository.FollowRepository
	notifications NotificationService
	broadcaster   realtime.Broadcaster
	tracer        trace.Tracer
	logger        zerolog.Logger
}

func NewStreamService(streams repository.StreamRepository, follows repository.FollowRepository, notifications NotificationService, broadcaster realtime.Broadcaster, logger zerolog.Logger) StreamService {
	if broadcaster == nil {
		broadcaster = realtime.Noop{}
	}

	return &streamService{
		streams:       streams,
		follows:       follows,
		notifications: notifications,
		broadcaster:   broadcaster,
		tracer:        otel.Tracer("github.com/alfaruq-id/barakah-api/internal/service/stream"),
		logger:        logger.With().Str("component", "stream_service").Logger(),
	}
}

func (s *streamService) Create(ctx context.Context, hostID uint, req dto.StreamCreateRequest) (dto.StreamResponse, error) {
	ctx, span := s.tracer.Start(ctx, "stream.create")
	defer span.End()

	stream := models.Stream{
		HostID:      hostID,
		Title:       req.Title,
		Category:    req.Category,
		ScheduledAt: req.ScheduledAt,
	}
	if err := s.streams.Create(ctx, &stream); err != nil {
		return dto.StreamResponse{}, fmt.Errorf("create stream: %w", err)
	}

	created, err := s.streams.FindByID(ctx, stream.ID)
	if err != nil {
		return dto.StreamResponse{}, fmt.Errorf("reload stream: %w", err)
	}
	return dto.NewStreamResponse(created, 0), nil
}

func (s *streamService) Get(ctx context.Context, id uint) (dto.StreamResponse, error) {
	stream, err := s.findStream(ctx, id)
	if err != nil {
		return dto.StreamResponse{}, err
	}
	return dto.NewStreamResponse(stream, s.viewerCount(stream)), nil
}

// Start moves a scheduled stream to live. Only the host may start it; a
// stream in any other state yields a conflict.
func (s *streamService) Start(ctx context.Context, userID, streamID uint) (dto.StreamResponse, error) {
	ctx, span := s.tracer.Start(ctx, "stream.start")
	defer span.End()

	stream, err := s.findStream(ctx, streamID)
	if err != nil {
		return dto.StreamResponse{}, err
	}
	if stream.HostID != userID {
		return dto.StreamResponse{}, ErrForbidden
	}

	live, err := s.streams.TransitionToLive(ctx, streamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StreamResponse{}, ErrConflict
		}
		return dto.StreamResponse{}, fmt.Errorf("transition to live: %w", err)
	}

	resp := dto.NewStreamResponse(live, s.viewerCount(live))
	s.broadcaster.Publish(realtime.GlobalRoom, "stream:live", resp)
	go s.notifyFollowers(ctx, live)

	s.logger.Info().Uint("stream_id", live.ID).Uint("host_id", live.HostID).Msg("stream went live")
	return resp, nil
}

// End moves a live stream to ended. The host or a moderator may end it.
func (s *streamService) End(ctx context.Context, userID uint, userRole string, streamID uint, req dto.StreamEndRequest) (dto.StreamResponse, error) {
	ctx, span := s.tracer.Start(ctx, "stream.end")
	defer span.End()

	stream, err := s.findStream(ctx, streamID)
	if err != nil {
		return dto.StreamResponse{}, err
	}
	if stream.HostID != userID && userRole != models.RoleModerator && userRole != models.RoleAdmin {
		return dto.StreamResponse{}, ErrForbidden
	}

	ended, err := s.streams.TransitionToEnded(ctx, streamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StreamResponse{}, ErrConflict
		}
		return dto.StreamResponse{}, fmt.Errorf("transition to ended: %w", err)
	}

	if req.RecordingURL != "" {
		if err := s.streams.SetRecordingURL(ctx, streamID, req.RecordingURL); err != nil {
			s.logger.Error().Err(err).Uint("stream_id", streamID).Msg("failed to attach recording")
		} else {
			ended.RecordingURL = req.RecordingURL
		}
	}

	resp := dto.NewStreamResponse(ended, 0)
	s.broadcaster.Publish(realtime.StreamRoom(streamID), "stream:ended", resp)

	s.logger.Info().Uint("stream_id", streamID).Msg("stream ended")
	return resp, nil
}

func (s *streamService) ListLive(ctx context.Context, category string, page, limit int) ([]dto.StreamResponse, error) {
	page, limit = normalizePage(page, limit)
	streams, err := s.streams.ListLive(ctx, category, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list live streams: %w", err)
	}
	return s.toResponses(streams, true), nil
}

func (s *streamService) ListScheduled(ctx context.Context, page, limit int) ([]dto.StreamResponse, error) {
	page, limit = normalizePage(page, limit)
	streams, err := s.streams.ListScheduled(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list scheduled streams: %w", err)
	}
	return s.toResponses(streams, false), nil
}

func (s *streamService) ListRecordings(ctx context.Context, page, limit int) ([]dto.StreamResponse, error) {
	page, limit = normalizePage(page, limit)
	streams, err := s.streams.ListRecordings(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	return s.toResponses(streams, false), nil
}

func (s *streamService) findStream(ctx context.Context, id uint) (models.Stream, error) {
	stream, err := s.streams.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Stream{}, ErrNotFound
		}
		return models.Stream{}, fmt.Errorf("find stream: %w", err)
	}
	return stream, nil
}

func (s *streamService) viewerCount(stream models.Stream) int {
	if stream.Status != models.StreamStatusLive {
		return 0
	}
	return s.broadcaster.RoomSize(realtime.StreamRoom(stream.ID))
}

func (s *streamService) toResponses(streams []models.Stream, withViewers bool) []dto.StreamResponse {
	out := make([]dto.StreamResponse, 0, len(streams))
	for _, stream := range streams {
		count := 0
		if withViewers {
			count = s.viewerCount(stream)
		}
		out = append(out, dto.NewStreamResponse(stream, count))
	}
	return out
}

// notifyFollowers fans the go-live event out to the host's followers. It
// runs off the request path; the stream is already live either way.
func (s *streamService) notifyFollowers(ctx context.Context, stream models.Stream) {
	ctx = context.WithoutCancel(ctx)

	followerIDs, err := s.follows.FollowerIDs(ctx, stream.HostID)
	if err != nil {
		s.logger.Error().Err(err).Uint("stream_id", stream.ID).Msg("failed to load followers for live notification")
		return
	}

	for _, followerID := range followerIDs {
		if err := s.notifications.Dispatch(ctx, followerID, stream.HostID, models.NotificationKindStreamLive, "stream", stream.ID); err != nil {
			s.logger.Warn().Err(err).Uint("recipient_id", followerID).Msg("failed to dispatch live notification")
		}
	}
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit
}
