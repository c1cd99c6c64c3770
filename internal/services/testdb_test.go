package services

import (
	"fmt"
	"testing"

	"github.com/localnerve/jam-build-learnhub/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

type fakeAccounts struct {
	users map[string]string // email -> password
	ids   map[string]string // email -> user id
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{users: map[string]string{}, ids: map[string]string{}}
}

func (f *fakeAccounts) SignUp(email, password string) (string, error) {
	if _, ok := f.users[email]; ok {
		return "", ErrEmailInUse
	}
	f.users[email] = password
	f.ids[email] = fmt.Sprintf("user%d", len(f.users))
	return f.ids[email], nil
}

func (f *fakeAccounts) Login(email, password string) (string, error) {
	if pw, ok := f.users[email]; !ok || pw != password {
		return "", ErrInvalidCredentials
	}
	return f.ids[email], nil
}
