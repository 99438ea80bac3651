package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alfaruq-id/barakah-api/internal/models"
)

// setupTestDB opens a per-test in-memory database named after the test so
// parallel tests never share state. TranslateError makes duplicate-key
// behavior match the postgres driver.
func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, banned bool) models.User {
	t.Helper()
	user := models.User{Username: username, DisplayName: username, Banned: banned}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createPost(t *testing.T, db *gorm.DB, authorID uint, content string) models.Post {
	t.Helper()
	post := models.Post{AuthorID: authorID, Content: content}
	require.NoError(t, db.Create(&post).Error)
	return post
}
