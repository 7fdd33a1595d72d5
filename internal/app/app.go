package app

import (
	"context"
	"net/http"

	"github.com/carventure/sellerhub/internal/pkg/clock"
	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/goroutine"
	"github.com/carventure/sellerhub/internal/pkg/hash"
	"github.com/carventure/sellerhub/internal/pkg/idempotency"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/jwt"
	"github.com/carventure/sellerhub/internal/pkg/mail"
	"github.com/carventure/sellerhub/internal/pkg/messaging"
	"github.com/carventure/sellerhub/internal/pkg/otp"
	"github.com/carventure/sellerhub/internal/pkg/router"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	ready  *atomic.Bool

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hasher    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	codec     *otp.Codec
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		ready:  atomic.NewBool(false),
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
