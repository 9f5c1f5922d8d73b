package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/internal/queue"
	mid "github.com/OFFIS-RIT/kgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/kgraph/backend/internal/setup"
	"github.com/OFFIS-RIT/kgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader/web"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New returns an echo instance with the middleware stack and every route
// registered for app.
func New(app *mid.App, corsOrigins []string, bodyLimit string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	if len(corsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: corsOrigins}))
	} else {
		e.Use(middleware.CORS())
	}
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := setup.ConfigFromEnv()

	aiClient, err := setup.NewAIClient(cfg)
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}
	graphClient, err := setup.NewGraphClient(cfg, aiClient)
	if err != nil {
		logger.Fatal("Failed to create graph client", "err", err)
	}
	st, err := setup.NewStore(ctx, cfg, aiClient)
	if err != nil {
		logger.Fatal("Failed to open graph store", "store", cfg.GraphStore, "err", err)
	}
	defer st.Close(context.Background())

	app := &mid.App{
		Graph:        graphClient,
		Store:        st,
		Web:          web.NewWebGraphLoader(),
		MaxTextChars: util.GetEnvInt("MAX_TEXT_CHARS", mid.DefaultMaxTextChars),
	}

	// The job queue is optional; /api/graph/jobs answers 503 without it.
	if util.GetEnv("RABBITMQ_HOST") != "" {
		conn, err := queue.Dial()
		if err != nil {
			logger.Warn("Job queue unavailable", "err", err)
		} else {
			defer conn.Close()
			ch, err := conn.Channel()
			if err != nil {
				logger.Fatal("Failed to open channel", "err", err)
			}
			if err := queue.SetupQueues(ch, []string{queue.BuildQueue}); err != nil {
				logger.Fatal("Failed to set up queues", "err", err)
			}
			app.Queue = queue.NewChannelPublisher(ch)
		}
	}

	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}
	app.S3 = s3Client

	e := New(app, util.GetEnvList("CORS_ORIGINS", nil), util.GetEnvString("BODY_LIMIT", "50M"))

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port, "store", cfg.GraphStore, "tagger", cfg.Tagger)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
