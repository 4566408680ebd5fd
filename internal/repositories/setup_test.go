package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// --- Setup Postgres ---
func setupPostgres(t *testing.T) (*sqlx.DB, func()) {
	logger.Initialize("debug")
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "secret", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:secret@%s:%s/testdb?sslmode=disable", host, port.Port())
	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	require.NoError(t, Migrate(ctx, db))

	return db, func() {
		db.Close()
		container.Terminate(ctx)
	}
}

// --- Helpers ---
func createAccount(t *testing.T, db *sqlx.DB, email string) *models.AccountDB {
	acc := &models.AccountDB{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Jane",
		LastName:     "Doe",
		Role:         models.RoleUser,
	}
	require.NoError(t, NewAccountRepository(db, nil).Create(context.Background(), acc))
	return acc
}

func createWallet(t *testing.T, db *sqlx.DB, accountID uuid.UUID, balance string) {
	ctx := context.Background()
	repo := NewWalletRepository(db, nil)
	_, err := repo.Create(ctx, accountID)
	require.NoError(t, err)
	if balance != "" {
		_, err = repo.Credit(ctx, accountID, decimal.RequireFromString(balance))
		require.NoError(t, err)
	}
}

func createProduct(t *testing.T, db *sqlx.DB, name string, category models.Category, basePrice string) *models.ProductDB {
	p := &models.ProductDB{
		Name:        name,
		Description: name + " description",
		Category:    category,
		BasePrice:   decimal.RequireFromString(basePrice),
		Materials:   []string{"paper", "vinyl"},
		Finishes:    []string{"matte", "gloss"},
		Features:    []string{},
		MinQuantity: 100,
		IsActive:    true,
	}
	require.NoError(t, NewProductRepository(db, nil).Create(context.Background(), p))
	return p
}
