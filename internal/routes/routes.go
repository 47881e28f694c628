package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userdir/userdir/internal/config"
	"github.com/userdir/userdir/internal/metrics"
	"github.com/userdir/userdir/internal/middleware"
	"github.com/userdir/userdir/internal/users"
)

// Deps aggregates shared dependencies required to wire routes. At most one of
// Mongo and DB is expected; with neither, an in-memory store is used in
// development.
type Deps struct {
	Cfg    config.Config
	Mongo  *mongo.Client
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	repo, err := newRepository(d)
	if err != nil {
		return err
	}

	// Middlewares
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key, X-Request-ID",
	}))
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Metrics())
	// Inside Audit and Metrics so that a recovered panic is seen as a 500.
	app.Use(recover.New())
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	userSvc := users.NewService(repo, d.Logger)
	userHandler := users.NewHandler(userSvc)

	RegisterHealthRoutes(app, userSvc, d.Cache)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.GetRequestID(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	RegisterUserRoutes(api, userHandler)

	return nil
}

func newRepository(d Deps) (users.Repository, error) {
	switch {
	case d.Mongo != nil:
		return users.NewMongoRepository(d.Mongo, d.Cfg.MongoDatabase), nil
	case d.DB != nil:
		repo := users.NewPostgresRepository(d.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case d.Cfg.IsDev():
		d.Logger.Warn("no database configured, using in-memory user store")
		return users.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
}
