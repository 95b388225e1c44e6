package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/pressly/goose/v3"

	"github.com/SnehashisOrg/webapp/internal/api"
	"github.com/SnehashisOrg/webapp/internal/config"
	"github.com/SnehashisOrg/webapp/internal/migrations"
	"github.com/SnehashisOrg/webapp/internal/notify"
	"github.com/SnehashisOrg/webapp/internal/objstore"
	"github.com/SnehashisOrg/webapp/internal/repository"
	"github.com/SnehashisOrg/webapp/internal/service"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// a store that never comes up is fatal; per-request outages degrade to 503
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		log.Fatalf("Failed to set migration dialect: %v", err)
	}
	if err := goose.Up(db.DB, "."); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store, err := objstore.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage client: %v", err)
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Drain()

	publisher := notify.NewPublisher(nc, cfg.ExternalTimeout)

	userRepo := repository.NewPostgresUserRepository(db)
	tokenRepo := repository.NewPostgresTokenRepository(db)
	imageRepo := repository.NewPostgresImageRepository(db)

	userService := service.NewUserService(userRepo, cfg.VerifyEmailEnabled)
	verificationService := service.NewVerificationService(
		tokenRepo, userRepo, publisher, logger, cfg.BaseURL, cfg.VerifyTTL)
	imageService := service.NewImageService(imageRepo, store, logger)

	userHandler := api.NewUserHandler(userService, verificationService, logger)
	imageHandler := api.NewImageHandler(userService, imageService)

	app := fiber.New()
	api.SetupRoutes(app, userHandler, imageHandler, userService, logger)

	logger.Info("listening", "port", cfg.AppPort)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}
