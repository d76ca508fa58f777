package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// TestDataFactory создаёт тестовые данные напрямую через Storage.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создаёт фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создаёт активного пользователя с заданным email.
func (f *TestDataFactory) CreateUser(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.storage.CreateUser(context.Background(), models.User{
		Email:        email,
		PasswordHash: "$2a$12$hash",
		FirstName:    "Test",
		LastName:     "User",
	})
	require.NoError(t, err)
	return u
}

// CreateSubscription создаёт подписку и возвращает её ID.
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID string, name string, cost models.Money,
	cycle models.BillingCycle, next models.Date, categoryID *int) int {
	t.Helper()
	id, err := f.storage.CreateSubscription(context.Background(), models.Subscription{
		UserID:          userID,
		CategoryID:      categoryID,
		Name:            name,
		Cost:            cost,
		BillingCycle:    cycle,
		NextBillingDate: next,
	})
	require.NoError(t, err)
	return id
}

// CategoryID возвращает ID категории по имени.
func (f *TestDataFactory) CategoryID(t *testing.T, name string) int {
	t.Helper()
	var id int
	require.NoError(t, f.storage.DB.QueryRow(`SELECT id FROM categories WHERE name = $1`, name).Scan(&id))
	return id
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = postgresContainer.Terminate(ctx)
	})

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(ctx, connStr, config.Storage{MaxOpenConns: 10})
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() {
		_ = storage.Close()
	})

	require.NoError(t, migrations.Run(storage.DB))
	return storage
}
