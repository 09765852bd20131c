// Package devserver is a local stand-in for the lost-and-found REST service.
// It serves the same eight endpoints and response envelope from a SQLite
// file, so the client can be run and tested without the public API.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robby/lostfound/internal/logging"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DefaultAddr is where the dev server listens unless told otherwise.
	DefaultAddr = "127.0.0.1:8080"
	// APIPrefix is the path every endpoint lives under.
	APIPrefix = "/api/v1"

	defaultDSN      = "lostfound-dev.db"
	defaultTokenTTL = 24 * time.Hour
	defaultIssuer   = "lostfound-devserver"
)

// Config configures a Server. Zero values pick defaults.
type Config struct {
	DSN        string        // SQLite file path
	Secret     string        // HS256 signing key; required
	TokenTTL   time.Duration // lifetime of issued tokens
	BcryptCost int           // bcrypt.DefaultCost when zero
	Logger     *log.Logger
}

// Server owns the fiber app and its database.
type Server struct {
	app    *fiber.App
	db     *gorm.DB
	repo   *repository
	tokens tokens
	cost   int
	log    *log.Logger
}

// New opens the database, migrates it and builds the routes.
func New(cfg Config) (*Server, error) {
	if cfg.Secret == "" {
		return nil, errors.New("devserver: secret is required")
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = defaultDSN
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logging.WithPrefix("devserver")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// SQLite allows one writer at a time
	sqlDB.SetMaxOpenConns(1)

	repo := newRepository(db)
	if err := repo.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	s := &Server{
		db:   db,
		repo: repo,
		tokens: tokens{
			secret: []byte(cfg.Secret),
			ttl:    ttl,
			issuer: defaultIssuer,
			now:    time.Now,
		},
		cost: cost,
		log:  lg,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "lostfound-devserver",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	lg.Info("dev server ready", "database", dsn)
	return s, nil
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.StatusOK, "healthy", nil)
	})

	v1 := s.app.Group(APIPrefix)
	v1.Post("/auth/register", s.register)
	v1.Post("/auth/login", s.login)

	protected := v1.Group("", s.requireAuth)
	protected.Get("/users/me", s.me)
	protected.Get("/lost-founds", s.listItems)
	protected.Post("/lost-founds", s.createItem)
	protected.Get("/lost-founds/:id", s.getItem)
	protected.Put("/lost-founds/:id", s.updateItem)
	protected.Delete("/lost-founds/:id", s.deleteItem)
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown stops accepting requests, waits for in-flight ones and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	if sqlDB, dbErr := s.db.DB(); dbErr == nil {
		err = errors.Join(err, sqlDB.Close())
	}
	s.log.Info("dev server stopped")
	return err
}
