package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	handler "github.com/newsline/engage/internal/adapters/handler/http"
	"github.com/newsline/engage/internal/adapters/oauth/google"
	"github.com/newsline/engage/internal/adapters/repository/postgres"
	"github.com/newsline/engage/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	presenceRepo := postgres.NewPresenceRepository(db)
	pollRepo := postgres.NewPollRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	authRepo := postgres.NewAuthRepository(db)

	engagementSvc := services.NewEngagementService(presenceRepo)
	voteSvc := services.NewVoteService(pollRepo, voteRepo)
	notificationSvc := services.NewNotificationService(presenceRepo, notificationRepo)
	userSvc := services.NewUserService(userRepo)
	authSvc := services.NewAuthService(userRepo, authRepo, google.NewVerifier())

	router := handler.NewHandler(handler.Handlers{
		Engagement:   handler.NewEngagementHandler(engagementSvc),
		Poll:         handler.NewPollHandler(voteSvc),
		Notification: handler.NewNotificationHandler(notificationSvc),
		User:         handler.NewUserHandler(userSvc),
		Auth: handler.NewAuthHandler(
			authSvc,
			os.Getenv("AUTH_REDIRECT_URL"),
			os.Getenv("COOKIE_DOMAIN"),
			stdhttp.SameSiteLaxMode,
		),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &stdhttp.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
