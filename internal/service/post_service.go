package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/dto"
	"github.com/alfaruq-id/barakah-api/internal/models"
	"github.com/alfaruq-id/barakah-api/internal/repository"
)

var (
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	mentionPattern = regexp.MustCompile(`@([a-zA-Z0-9_]{2,64})`)
)

// PostService owns post creation, lookup and owner deletion.
type PostService interface {
	Create(ctx context.Context, authorID uint, req dto.PostCreateRequest) (dto.PostResponse, error)
	Get(ctx context.Context, id, viewerID uint) (dto.PostResponse, error)
	Delete(ctx context.Context, id, userID uint) error
}

type postService struct {
	posts         repository.PostRepository
	users         repository.UserRepository
	notifications NotificationService
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewPostService constructs the post service.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, notifications NotificationService, logger zerolog.Logger) PostService {
	return &postService{
		posts:         posts,
		users:         users,
		notifications: notifications,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "post_service").Logger(),
	}
}

func (s *postService) Create(ctx context.Context, authorID uint, req dto.PostCreateRequest) (dto.PostResponse, error) {
	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.PostResponse{}, ErrValidation
	}

	var parent *models.Post
	if req.ReplyToID != nil {
		found, err := s.posts.FindVisibleByID(ctx, *req.ReplyToID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.PostResponse{}, ErrNotFound
			}
			return dto.PostResponse{}, err
		}
		parent = &found
	}

	post := models.Post{
		AuthorID:  authorID,
		Content:   content,
		ReplyToID: req.ReplyToID,
		HadithRef: strings.TrimSpace(req.HadithRef),
	}

	tags := ExtractHashtags(content)
	if err := s.posts.Create(ctx, &post, tags); err != nil {
		return dto.PostResponse{}, err
	}

	if parent != nil {
		if err := s.notifications.Dispatch(ctx, parent.AuthorID, authorID, models.NotificationKindReply, "post", post.ID); err != nil {
			s.logger.Warn().Err(err).Uint("post_id", post.ID).Msg("failed to dispatch reply notification")
		}
	}

	s.notifyMentions(ctx, authorID, post.ID, content)

	author, err := s.users.FindByID(ctx, authorID)
	if err == nil {
		post.Author = author
	}

	return dto.NewPostResponse(post), nil
}

func (s *postService) Get(ctx context.Context, id, viewerID uint) (dto.PostResponse, error) {
	post, err := s.posts.FindVisibleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, ErrNotFound
		}
		return dto.PostResponse{}, err
	}

	response := dto.NewPostResponse(post)
	if viewerID != 0 {
		if liked, err := s.posts.HasLiked(ctx, id, viewerID); err == nil {
			response.Liked = liked
		}
		if reposted, err := s.posts.HasReposted(ctx, id, viewerID); err == nil {
			response.Reposted = reposted
		}
	}

	return response, nil
}

// Delete hides the post from all read paths. Replies keep their parent
// reference; the content simply stops resolving.
func (s *postService) Delete(ctx context.Context, id, userID uint) error {
	post, err := s.posts.FindVisibleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if post.AuthorID != userID {
		return ErrForbidden
	}

	return s.posts.SetHidden(ctx, id, true)
}

func (s *postService) notifyMentions(ctx context.Context, actorID, postID uint, content string) {
	seen := make(map[string]struct{})
	for _, match := range mentionPattern.FindAllStringSubmatch(content, -1) {
		username := strings.ToLower(match[1])
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}

		user, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			continue
		}
		if err := s.notifications.Dispatch(ctx, user.ID, actorID, models.NotificationKindMention, "post", postID); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("failed to dispatch mention notification")
		}
	}
}

// ExtractHashtags returns the lowercased, deduplicated tags found in the
// content, in order of first appearance.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, match := range matches {
		tag := strings.ToLower(match[1])
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
