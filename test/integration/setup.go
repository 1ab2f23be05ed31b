package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/newsline/engage/internal/adapters/handler/http"
	repo "github.com/newsline/engage/internal/adapters/repository/postgres"
	"github.com/newsline/engage/internal/core/ports"
	"github.com/newsline/engage/internal/core/services"
)

const testJWTSecret = "test-secret"

type TestApp struct {
	DB           *sql.DB
	Server       *httptest.Server
	Client       *http.Client
	ReconcileSvc ports.ReconcileService
	DBContainer  testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// MockVerifier for testing
type MockVerifier struct {
	email string
}

func (v *MockVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	if token == "valid_token" {
		return &ports.TokenPayload{Email: v.email, Name: "Test User"}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()

	os.Setenv("JWT_SECRET", testJWTSecret)

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	presenceRepo := repo.NewPresenceRepository(db)
	pollRepo := repo.NewPollRepository(db)
	voteRepo := repo.NewVoteRepository(db)
	notificationRepo := repo.NewNotificationRepository(db)
	userRepo := repo.NewUserRepository(db)
	authRepo := repo.NewAuthRepository(db)

	engagementSvc := services.NewEngagementService(presenceRepo)
	voteSvc := services.NewVoteService(pollRepo, voteRepo)
	notificationSvc := services.NewNotificationService(presenceRepo, notificationRepo)
	userSvc := services.NewUserService(userRepo)
	authSvc := services.NewAuthService(userRepo, authRepo, &MockVerifier{email: "test@example.com"})

	router := handler.NewHandler(handler.Handlers{
		Engagement:   handler.NewEngagementHandler(engagementSvc),
		Poll:         handler.NewPollHandler(voteSvc),
		Notification: handler.NewNotificationHandler(notificationSvc),
		User:         handler.NewUserHandler(userSvc),
		Auth:         handler.NewAuthHandler(authSvc, "https://example.com/redirect", "", http.SameSiteLaxMode),
	})

	server := httptest.NewServer(router)

	return &TestApp{
		DB:           db,
		Server:       server,
		Client:       server.Client(),
		ReconcileSvc: services.NewReconcileService(voteRepo),
		DBContainer:  dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	t.Helper()

	app.Server.Close()
	require.NoError(t, app.DB.Close())
	require.NoError(t, app.DBContainer.Terminate(context.Background()))
}

func createUserAndToken(t *testing.T, db *sql.DB) (uuid.UUID, string) {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	name := fmt.Sprintf("User %s", userID)
	_, err := db.Exec("INSERT INTO users (id, email, name) VALUES ($1, $2, $3)", userID, email, name)
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return userID, signedToken
}
