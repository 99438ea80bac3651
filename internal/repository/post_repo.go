package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// ToggleResult reports the outcome of an engagement flip: the caller's new
// membership and the post's counters as committed.
type ToggleResult struct {
	Active      bool
	LikeCount   int
	RepostCount int
	ReplyCount  int
}

// TagCount is one row of the trending-hashtag aggregation.
type TagCount struct {
	Tag   string
	Count int64
}

// PostRepository handles persistence for posts, engagement relations and
// derived hashtag views.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tags []string) error
	FindVisibleByID(ctx context.Context, id uint) (models.Post, error)
	ToggleLike(ctx context.Context, postID, userID uint) (ToggleResult, error)
	ToggleRepost(ctx context.Context, postID, userID uint) (ToggleResult, error)
	HasLiked(ctx context.Context, postID, userID uint) (bool, error)
	HasReposted(ctx context.Context, postID, userID uint) (bool, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	RepostedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error)
	ListRecent(ctx context.Context, since time.Time, max int) ([]models.Post, error)
	ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]models.Post, error)
	TrendingHashtags(ctx context.Context, since time.Time, limit int) ([]TagCount, error)
	SetHidden(ctx context.Context, postID uint, hidden bool) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository constructs a repository backed by GORM.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}

		for _, tag := range tags {
			entry := models.PostHashtag{PostID: post.ID, Tag: tag}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
				return err
			}
		}

		if post.ReplyToID != nil {
			if err := tx.Model(&models.Post{}).
				Where("id = ?", *post.ReplyToID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *postRepository) FindVisibleByID(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN users ON users.id = posts.author_id AND users.banned = ?", false).
		Where("posts.id = ? AND posts.hidden = ?", id, false).
		First(&post).Error
	return post, err
}

// ToggleLike flips like membership for (post, user). The insert relies on
// the unique (user, post) index with ON CONFLICT DO NOTHING, so two
// concurrent toggles can never double-increment: exactly one of them wins
// the insert and the other observes the row and deletes it. The counter is
// adjusted in the same transaction keyed on rows affected.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uint) (ToggleResult, error) {
	return r.toggle(ctx, postID, userID, "like_count", func(tx *gorm.DB) (int64, error) {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{UserID: userID, PostID: postID})
		return res.RowsAffected, res.Error
	}, func(tx *gorm.DB) (int64, error) {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		return res.RowsAffected, res.Error
	})
}

// ToggleRepost mirrors ToggleLike for the repost relation.
func (r *postRepository) ToggleRepost(ctx context.Context, postID, userID uint) (ToggleResult, error) {
	return r.toggle(ctx, postID, userID, "repost_count", func(tx *gorm.DB) (int64, error) {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Repost{UserID: userID, PostID: postID})
		return res.RowsAffected, res.Error
	}, func(tx *gorm.DB) (int64, error) {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Repost{})
		return res.RowsAffected, res.Error
	})
}

func (r *postRepository) toggle(ctx context.Context, postID, userID uint, counterColumn string, insert, remove func(tx *gorm.DB) (int64, error)) (ToggleResult, error) {
	var result ToggleResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).
			Where("id = ? AND hidden = ?", postID, false).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}

		inserted, err := insert(tx)
		if err != nil {
			return err
		}

		if inserted == 1 {
			result.Active = true
			if err := tx.Model(&models.Post{}).
				Where("id = ?", postID).
				UpdateColumn(counterColumn, gorm.Expr(counterColumn+" + 1")).Error; err != nil {
				return err
			}
		} else {
			removed, err := remove(tx)
			if err != nil {
				return err
			}
			result.Active = false
			if removed == 1 {
				if err := tx.Model(&models.Post{}).
					Where("id = ? AND "+counterColumn+" > 0", postID).
					UpdateColumn(counterColumn, gorm.Expr(counterColumn+" - 1")).Error; err != nil {
					return err
				}
			}
		}

		var post models.Post
		if err := tx.Select("like_count", "repost_count", "reply_count").
			Where("id = ?", postID).
			First(&post).Error; err != nil {
			return err
		}
		result.LikeCount = post.LikeCount
		result.RepostCount = post.RepostCount
		result.ReplyCount = post.ReplyCount

		return nil
	})

	return result, err
}

func (r *postRepository) HasLiked(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepository) HasReposted(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Repost{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

// LikedPostIDs returns the subset of postIDs the user has liked. Batch
// lookup for decorating feed pages without a query per post.
func (r *postRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}

// RepostedPostIDs mirrors LikedPostIDs for the repost relation.
func (r *postRepository) RepostedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Repost{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN users ON users.id = posts.author_id AND users.banned = ?", false).
		Where("posts.author_id IN ? AND posts.hidden = ?", authorIDs, false).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListRecent(ctx context.Context, since time.Time, max int) ([]models.Post, error) {
	if max <= 0 || max > 1000 {
		max = 500
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN users ON users.id = posts.author_id AND users.banned = ?", false).
		Where("posts.created_at >= ? AND posts.hidden = ?", since, false).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(max).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]models.Post, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id AND post_hashtags.tag = ?", tag).
		Joins("JOIN users ON users.id = posts.author_id AND users.banned = ?", false).
		Where("posts.hidden = ?", false).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) TrendingHashtags(ctx context.Context, since time.Time, limit int) ([]TagCount, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var rows []TagCount
	err := r.db.WithContext(ctx).
		Model(&models.PostHashtag{}).
		Select("post_hashtags.tag AS tag, COUNT(*) AS count").
		Joins("JOIN posts ON posts.id = post_hashtags.post_id AND posts.hidden = ?", false).
		Where("post_hashtags.created_at >= ?", since).
		Group("post_hashtags.tag").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postRepository) SetHidden(ctx context.Context, postID uint, hidden bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("hidden", hidden)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
