package middleware

import (
	"github.com/OFFIS-RIT/kgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
)

// DefaultMaxTextChars is the input ceiling when MAX_TEXT_CHARS is unset.
const DefaultMaxTextChars = 2_000_000

// App holds the shared collaborators of every request. Queue, S3 and Web
// are optional; the routes that need them answer 503 without them.
type App struct {
	Graph        *graph.GraphClient
	Store        store.GraphStorage
	Queue        queue.Publisher
	S3           *s3.Client
	Web          loader.GraphFileLoader
	MaxTextChars int
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	if app.MaxTextChars <= 0 {
		app.MaxTextChars = DefaultMaxTextChars
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
