package database_test

import (
	"context"
	"os"
	"testing"

	"github.com/localnerve/jam-build-learnhub/internal/config"
	"github.com/localnerve/jam-build-learnhub/internal/database"
	"github.com/localnerve/jam-build-learnhub/internal/services"
	"github.com/localnerve/jam-build-learnhub/internal/testutil"
	"gorm.io/gorm"
)

func TestDialectorRejectsUnknownType(t *testing.T) {
	if _, err := database.Dialector(&config.Config{DBType: "oracle"}); err == nil {
		t.Error("Expected an error for an unsupported database type")
	}
}

func TestDialectorKnownTypes(t *testing.T) {
	for _, dbType := range []string{"mysql", "mariadb", "postgres", "sqlite", "sqlserver"} {
		cfg := &config.Config{DBType: dbType, DBHost: "localhost", DBPort: "1", DBDatabase: "learnhub", DBUser: "u"}
		dialector, err := database.Dialector(cfg)
		if err != nil || dialector == nil {
			t.Errorf("%s: expected a dialector, got %v", dbType, err)
		}
	}
}

func TestConnectSQLite(t *testing.T) {
	db, err := database.Connect(&config.Config{DBType: "sqlite", DBDatabase: ":memory:", DBConnectionLimit: 5})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close(db)

	exerciseDocuments(t, db)
}

// TestConnectContainer runs the same document round trip against DB_IMAGE
func TestConnectContainer(t *testing.T) {
	testutil.SkipUnless(t, "DB_IMAGE", "DB_TYPE", "DB_DATABASE", "DB_USER", "DB_PASSWORD")
	ctx := context.Background()

	container, endpoint, err := testutil.StartDatabase(ctx, t, "")
	if err != nil {
		t.Fatalf("Failed to start database: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	db, err := database.Connect(&config.Config{
		DBType:            os.Getenv("DB_TYPE"),
		DBHost:            endpoint.Host,
		DBPort:            endpoint.Port,
		DBDatabase:        os.Getenv("DB_DATABASE"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBConnectionLimit: 5,
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close(db)

	exerciseDocuments(t, db)
}

func exerciseDocuments(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	created, err := services.CreateDocument(db, services.CreateInput{
		Collection: "subjects",
		DocumentID: "s1",
		Data:       map[string]interface{}{"name": "Math", "grade": "form-2"},
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if created["$version"] != "1" {
		t.Errorf("Expected version 1, got %v", created["$version"])
	}

	if _, err := services.UpdateDocument(db, "subjects", "s1", 1, map[string]interface{}{"name": "Mathematics"}); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}

	docs, total, err := services.ListDocuments(db, services.ListQuery{
		Collection: "subjects",
		Filters:    []services.Filter{{Attribute: "grade", Value: "form-2"}},
	})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if total != 1 || docs[0]["name"] != "Mathematics" {
		t.Errorf("Unexpected list %v (total %d)", docs, total)
	}

	if err := services.DeleteDocument(db, "subjects", "s1", 2); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
}
