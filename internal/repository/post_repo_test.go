package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

func TestToggleLikeAlternates(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Post{}, &models.Like{}, &models.Repost{})
	repo := NewPostRepository(db)

	author := createUser(t, db, "author", false)
	liker := createUser(t, db, "liker", false)
	post := createPost(t, db, author.ID, "assalamu alaikum")

	first, err := repo.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	require.True(t, first.Active)
	require.Equal(t, 1, first.LikeCount)

	second, err := repo.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	require.False(t, second.Active)
	require.Equal(t, 0, second.LikeCount)

	third, err := repo.ToggleLike(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	require.True(t, third.Active)
	require.Equal(t, 1, third.LikeCount, "re-liking lands back on exactly one")

	liked, err := repo.HasLiked(context.Background(), post.ID, liker.ID)
	require.NoError(t, err)
	require.True(t, liked)
}

func TestToggleRepostIndependentOfLike(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Post{}, &models.Like{}, &models.Repost{})
	repo := NewPostRepository(db)

	author := createUser(t, db, "author", false)
	user := createUser(t, db, "user", false)
	post := createPost(t, db, author.ID, "content")

	_, err := repo.ToggleLike(context.Background(), post.ID, user.ID)
	require.NoError(t, err)

	result, err := repo.ToggleRepost(context.Background(), post.ID, user.ID)
	require.NoError(t, err)
	require.True(t, result.Active)
	require.Equal(t, 1, result.LikeCount)
	require.Equal(t, 1, result.RepostCount)
}

func TestToggleCounterNeverNegative(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Post{}, &models.Like{}, &models.Repost{})
	repo := NewPostRepository(db)

	author := createUser(t, db, "author", false)
	user := createUser(t, db, "user", false)
	post := createPost(t, db, author.ID, "content")

	// Counter drifted to zero out of band; the off flip must not push it
	// below zero.
	require.NoError(t, db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error)

	result, err := repo.ToggleLike(context.Background(), post.ID, user.ID)
	require.NoError(t, err)
	require.False(t, result.Active)
	require.Equal(t, 0, result.LikeCount)
}

func TestFindVisibleByIDFiltersBannedAndHidden(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Post{})
	repo := NewPostRepository(db)

	banned := createUser(t, db, "banned", true)
	visible := createUser(t, db, "visible", false)
	bannedPost := createPost(t, db, banned.ID, "should not resolve")
	hiddenPost := models.Post{AuthorID: visible.ID, Content: "hidden", Hidden: true}
	require.NoError(t, db.Create(&hiddenPost).Error)
	okPost := createPost(t, db, visible.ID, "fine")

	_, err := repo.FindVisibleByID(context.Background(), bannedPost.ID)
	require.Error(t, err)

	_, err = repo.FindVisibleByID(context.Background(), hiddenPost.ID)
	require.Error(t, err)

	found, err := repo.FindVisibleByID(context.Background(), okPost.ID)
	require.NoError(t, err)
	require.Equal(t, "visible", found.Author.Username)
}

func TestBannedAuthorDisappearsAndReappears(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Post{})
	repo := NewPostRepository(db)
	users := NewUserRepository(db)

	author := createUser(t, db, "author", false)
	post := createPost(t, db, author.ID, "content")

	require.NoError(t, users.SetBanned(context.Background(), author.ID, true, "spam", 99))
	_, err := repo.FindVisibleByID(context.Background(), post.ID)
	require.Error(t, err, "banned author's post must not resolve")

	require.NoError(t, users.SetBanned(context.Background(), author.ID, false, "", 99))
	found, err := repo.FindVisibleByID(context.Background(), post.ID)
	require.NoError(t, err, "content reappears after unban")
	require.Equal(t, post.ID, found.ID)
}

func TestCreateReplyBumpsParentCounter(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Post{}, &models.PostHashtag{})
	repo := NewPostRepository(db)

	author := createUser(t, db, "author", false)
	parent := createPost(t, db, author.ID, "parent")

	reply := models.Post{AuthorID: author.ID, Content: "child", ReplyToID: &parent.ID}
	require.NoError(t, repo.Create(context.Background(), &reply, nil))

	reloaded, err := repo.FindVisibleByID(context.Background(), parent.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.ReplyCount)
}

func TestHashtagListingAndTrending(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Post{}, &models.PostHashtag{})
	repo := NewPostRepository(db)

	author := createUser(t, db, "author", false)

	tagged := models.Post{AuthorID: author.ID, Content: "#ramadan mubarak"}
	require.NoError(t, repo.Create(context.Background(), &tagged, []string{"ramadan"}))
	other := models.Post{AuthorID: author.ID, Content: "#ramadan and #dua"}
	require.NoError(t, repo.Create(context.Background(), &other, []string{"ramadan", "dua"}))

	posts, err := repo.ListByHashtag(context.Background(), "ramadan", 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	trending, err := repo.TrendingHashtags(context.Background(), time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	require.Equal(t, "ramadan", trending[0].Tag)
	require.Equal(t, int64(2), trending[0].Count)
}

func TestListByAuthorsExcludesHidden(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Post{})
	repo := NewPostRepository(db)

	author := createUser(t, db, "author", false)
	createPost(t, db, author.ID, "first")
	hidden := models.Post{AuthorID: author.ID, Content: "hidden", Hidden: true}
	require.NoError(t, db.Create(&hidden).Error)

	posts, err := repo.ListByAuthors(context.Background(), []uint{author.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "first", posts[0].Content)
}
