package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/observability"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

// Feed tabs.
const (
	FeedTabFollowing = "following"
	FeedTabTrending  = "trending"
)

// trendingGravity sets how fast engagement decays with age. The score is
// strictly increasing in engagement and strictly decreasing in age.
const trendingGravity = 1.5

// FeedService assembles timelines from the follow graph and the engagement
// counters. It only ever reads persisted state.
type FeedService interface {
	GetFeed(ctx context.Context, userID uint, page, limit int, tab string) (dto.FeedResponse, error)
	PostsByHashtag(ctx context.Context, tag string, viewerID uint, page, limit int) ([]dto.PostResponse, error)
	TrendingHashtags(ctx context.Context, limit int) ([]dto.TrendingHashtagResponse, error)
}

type feedService struct {
	posts          repository.PostRepository
	follows        repository.FollowRepository
	cache          *redis.Client
	cacheTTL       time.Duration
	trendingWindow time.Duration
	logger         zerolog.Logger
}

// NewFeedService constructs the feed assembler. The cache client may be
// nil; trending is then recomputed on every request.
func NewFeedService(posts repository.PostRepository, follows repository.FollowRepository, cache *redis.Client, cacheTTL, trendingWindow time.Duration, logger zerolog.Logger) FeedService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	if trendingWindow <= 0 {
		trendingWindow = 48 * time.Hour
	}

	return &feedService{
		posts:          posts,
		follows:        follows,
		cache:          cache,
		cacheTTL:       cacheTTL,
		trendingWindow: trendingWindow,
		logger:         logger.With().Str("component", "feed_service").Logger(),
	}
}

func (s *feedService) GetFeed(ctx context.Context, userID uint, page, limit int, tab string) (dto.FeedResponse, error) {
	if tab == "" {
		tab = FeedTabFollowing
	}
	if tab != FeedTabFollowing && tab != FeedTabTrending {
		return dto.FeedResponse{}, ErrValidation
	}

	start := time.Now()
	defer func() {
		observability.FeedLatency().WithLabelValues(tab).Observe(time.Since(start).Seconds())
	}()

	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var (
		items []dto.PostResponse
		err   error
	)
	if tab == FeedTabFollowing {
		items, err = s.followingPage(ctx, userID, page, limit)
	} else {
		items, err = s.trendingPage(ctx, page, limit)
	}
	if err != nil {
		return dto.FeedResponse{}, err
	}

	items, err = s.decorate(ctx, userID, items)
	if err != nil {
		return dto.FeedResponse{}, err
	}

	return dto.FeedResponse{
		Items:      items,
		Tab:        tab,
		Pagination: dto.PaginationMeta{Page: page, PageSize: limit},
	}, nil
}

// followingPage is the chronological tab: posts authored by followees or by
// the user. An empty page is a valid answer, the caller shows follow
// suggestions.
func (s *feedService) followingPage(ctx context.Context, userID uint, page, limit int) ([]dto.PostResponse, error) {
	followees, err := s.follows.FolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authors := append(followees, userID)

	posts, err := s.posts.ListByAuthors(ctx, authors, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return dto.NewPostResponseSlice(posts), nil
}

// trendingPage ranks the recent window by decayed engagement. The page is
// cached undecorated for a short TTL; membership flags are applied per
// caller after the cache.
func (s *feedService) trendingPage(ctx context.Context, page, limit int) ([]dto.PostResponse, error) {
	cacheKey := ""
	if s.cache != nil {
		cacheKey = fmt.Sprintf("feed:trending:v1:%d:%d", page, limit)
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var items []dto.PostResponse
			if err := json.Unmarshal([]byte(cached), &items); err == nil {
				return items, nil
			}
		}
	}

	now := time.Now().UTC()
	posts, err := s.posts.ListRecent(ctx, now.Add(-s.trendingWindow), 500)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return trendingScore(posts[i], now) > trendingScore(posts[j], now)
	})

	startIdx := (page - 1) * limit
	if startIdx >= len(posts) {
		return []dto.PostResponse{}, nil
	}
	endIdx := startIdx + limit
	if endIdx > len(posts) {
		endIdx = len(posts)
	}

	items := dto.NewPostResponseSlice(posts[startIdx:endIdx])

	if cacheKey != "" {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache trending feed page")
			}
		}
	}

	return items, nil
}

func (s *feedService) PostsByHashtag(ctx context.Context, tag string, viewerID uint, page, limit int) ([]dto.PostResponse, error) {
	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return nil, ErrValidation
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	posts, err := s.posts.ListByHashtag(ctx, tag, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return s.decorate(ctx, viewerID, dto.NewPostResponseSlice(posts))
}

func (s *feedService) TrendingHashtags(ctx context.Context, limit int) ([]dto.TrendingHashtagResponse, error) {
	since := time.Now().UTC().Add(-s.trendingWindow)
	rows, err := s.posts.TrendingHashtags(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TrendingHashtagResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.TrendingHashtagResponse{Tag: row.Tag, Count: row.Count})
	}
	return out, nil
}

// decorate fills the caller's liked/reposted flags with two batch lookups.
func (s *feedService) decorate(ctx context.Context, viewerID uint, items []dto.PostResponse) ([]dto.PostResponse, error) {
	if viewerID == 0 || len(items) == 0 {
		return items, nil
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	liked, err := s.posts.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	reposted, err := s.posts.RepostedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	likedSet := toSet(liked)
	repostedSet := toSet(reposted)
	for i := range items {
		_, items[i].Liked = likedSet[items[i].ID]
		_, items[i].Reposted = repostedSet[items[i].ID]
	}
	return items, nil
}

func trendingScore(post models.Post, now time.Time) float64 {
	engagement := float64(post.LikeCount + 2*post.RepostCount + post.ReplyCount)
	ageHours := now.Sub(post.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return engagement / math.Pow(ageHours+2, trendingGravity)
}

func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
