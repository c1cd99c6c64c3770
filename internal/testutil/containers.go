// Package testutil starts the backing services used by integration tests and
// by cmd/testcontainers. Expects its environment variables to be loaded from
// .env files.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Endpoint is a host-reachable address for a started container
type Endpoint struct {
	Host string
	Port string
}

// Containers tracks everything StartAll created
type Containers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	RedisContainer      testcontainers.Container
	AuthorizerContainer testcontainers.Container

	DB    Endpoint
	Redis Endpoint
}

// Terminate stops every started container, logging failures
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.RedisContainer != nil {
		if err := tc.RedisContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Redis: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// SkipUnless skips t in short mode or when any of the named variables is unset
func SkipUnless(t *testing.T, envs ...string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	for _, env := range envs {
		if os.Getenv(env) == "" {
			t.Skipf("skipping container test, %s is not set", env)
		}
	}
}

// StartDatabase starts the DB_IMAGE container for DB_TYPE (mariadb, mysql or
// postgres) and waits until it accepts connections.
func StartDatabase(ctx context.Context, t *testing.T, networkName string) (testcontainers.Container, Endpoint, error) {
	dbType := os.Getenv("DB_TYPE")
	tcpPort, err := nat.NewPort("tcp", defaultPort(dbType))
	if err != nil {
		return nil, Endpoint{}, fmt.Errorf("failed to create DB port: %w", err)
	}

	var waitStrategy wait.Strategy = wait.ForListeningPort(tcpPort).WithStartupTimeout(60 * time.Second)
	if dbType == "postgres" {
		waitStrategy = wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second)
	}

	req := testcontainers.ContainerRequest{
		Image:        os.Getenv("DB_IMAGE"),
		ExposedPorts: []string{string(tcpPort)},
		Env:          dbInitEnv(dbType),
		WaitingFor:   waitStrategy,
		HostConfigModifier: func(hostConfig *container.HostConfig) {
			// Data is throwaway, keep it off disk
			hostConfig.Tmpfs = map[string]string{dataDir(dbType): "rw"}
		},
	}
	if networkName != "" {
		req.Networks = []string{networkName}
		req.NetworkAliases = map[string][]string{networkName: {"db"}}
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, Endpoint{}, fmt.Errorf("failed to start database: %w", err)
	}

	endpoint, err := endpointOf(ctx, dbContainer, tcpPort)
	if err != nil {
		_ = dbContainer.Terminate(ctx)
		return nil, Endpoint{}, err
	}

	if dbType == "mysql" || dbType == "mariadb" {
		if err := initMySQL(endpoint); err != nil {
			_ = dbContainer.Terminate(ctx)
			return nil, Endpoint{}, err
		}
	}

	logMessage(t, "DB_HOST=%s DB_PORT=%s", endpoint.Host, endpoint.Port)
	return dbContainer, endpoint, nil
}

// StartRedis starts the REDIS_IMAGE container
func StartRedis(ctx context.Context, t *testing.T, networkName string) (testcontainers.Container, Endpoint, error) {
	tcpPort, err := nat.NewPort("tcp", "6379")
	if err != nil {
		return nil, Endpoint{}, fmt.Errorf("failed to create Redis port: %w", err)
	}

	req := testcontainers.ContainerRequest{
		Image:        os.Getenv("REDIS_IMAGE"),
		ExposedPorts: []string{string(tcpPort)},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	if networkName != "" {
		req.Networks = []string{networkName}
		req.NetworkAliases = map[string][]string{networkName: {"redis"}}
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, Endpoint{}, fmt.Errorf("failed to start Redis: %w", err)
	}

	endpoint, err := endpointOf(ctx, redisContainer, tcpPort)
	if err != nil {
		_ = redisContainer.Terminate(ctx)
		return nil, Endpoint{}, err
	}

	logMessage(t, "LEARNHUB_REDIS_URL=redis://%s:%s/0", endpoint.Host, endpoint.Port)
	return redisContainer, endpoint, nil
}

// StartAll starts the database, Authorizer and Redis on a shared network.
// Authorizer and Redis are skipped when their image variables are unset.
func StartAll(t *testing.T) (*Containers, error) {
	ctx := context.Background()
	tc := &Containers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	for _, name := range []string{os.Getenv("DB_IMAGE"), os.Getenv("AUTHZ_IMAGE"), os.Getenv("REDIS_IMAGE")} {
		if name == "" {
			continue
		}
		if exists, err := ImageExists(ctx, name); err == nil && !exists {
			logMessage(t, "Image %s is not cached, pulling...", name)
		}
	}

	tc.DBContainer, tc.DB, err = StartDatabase(ctx, t, nw.Name)
	if err != nil {
		tc.Terminate(t)
		return nil, err
	}

	if os.Getenv("AUTHZ_IMAGE") != "" {
		if err := tc.startAuthorizer(ctx, t); err != nil {
			tc.Terminate(t)
			return nil, err
		}
	}

	if os.Getenv("REDIS_IMAGE") != "" {
		tc.RedisContainer, tc.Redis, err = StartRedis(ctx, t, nw.Name)
		if err != nil {
			tc.Terminate(t)
			return nil, err
		}
	}

	logMessage(t, "Test containers started successfully")
	return tc, nil
}

func (tc *Containers) startAuthorizer(ctx context.Context, t *testing.T) error {
	tcpPort, err := nat.NewPort("tcp", getEnv("AUTHZ_PORT", "8080"))
	if err != nil {
		return fmt.Errorf("failed to create Authorizer port: %w", err)
	}

	dbType := os.Getenv("DB_TYPE")
	dbURL := fmt.Sprintf("root:%s@tcp(db:%s)/%s", os.Getenv("DB_ROOT_PASSWORD"), defaultPort(dbType), os.Getenv("AUTHZ_DATABASE"))
	if dbType == "postgres" {
		dbURL = fmt.Sprintf("postgres://%s:%s@db:5432/%s?sslmode=disable",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_DATABASE"))
	}

	authzContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("AUTHZ_IMAGE"),
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          tcpPort.Port(),
				"DATABASE_TYPE": dbType,
				"DATABASE_NAME": os.Getenv("AUTHZ_DATABASE"),
				"DATABASE_URL":  dbURL,
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "admin,teacher,student",
				"DEFAULT_ROLES": "student",
			},
			WaitingFor:     wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:       []string{tc.Network.Name},
			NetworkAliases: map[string][]string{tc.Network.Name: {"authorizer"}},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start Authorizer: %w", err)
	}
	tc.AuthorizerContainer = authzContainer

	endpoint, err := endpointOf(ctx, authzContainer, tcpPort)
	if err != nil {
		return err
	}
	logMessage(t, "AUTHZ_URL=http://%s:%s", endpoint.Host, endpoint.Port)
	return nil
}

// ImageExists reports whether imageName is present in the local Docker cache
func ImageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}
	return false, nil
}

func endpointOf(ctx context.Context, c testcontainers.Container, port nat.Port) (Endpoint, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return Endpoint{}, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return Endpoint{}, fmt.Errorf("failed to get mapped port %s: %w", port, err)
	}
	return Endpoint{Host: host, Port: mapped.Port()}, nil
}

func dbInitEnv(dbType string) map[string]string {
	switch dbType {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": os.Getenv("DB_PASSWORD"),
			"POSTGRES_USER":     os.Getenv("DB_USER"),
			"POSTGRES_DB":       os.Getenv("DB_DATABASE"),
		}
	default:
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": os.Getenv("DB_ROOT_PASSWORD"),
			"MYSQL_DATABASE":      os.Getenv("DB_DATABASE"),
			"MYSQL_USER":          os.Getenv("DB_USER"),
			"MYSQL_PASSWORD":      os.Getenv("DB_PASSWORD"),
		}
	}
}

func defaultPort(dbType string) string {
	if dbType == "postgres" {
		return "5432"
	}
	return "3306"
}

func dataDir(dbType string) string {
	if dbType == "postgres" {
		return "/var/lib/postgresql/data"
	}
	return "/var/lib/mysql"
}

// initMySQL waits for the server to answer and creates the Authorizer database
func initMySQL(endpoint Endpoint) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", os.Getenv("DB_ROOT_PASSWORD"), endpoint.Host, endpoint.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	if authzDB := os.Getenv("AUTHZ_DATABASE"); authzDB != "" {
		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", authzDB)); err != nil {
			return fmt.Errorf("failed to create %s: %w", authzDB, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
