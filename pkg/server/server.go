package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"

	"github.com/EliasObeid9-02/library-system/pkg/auth"
	"github.com/EliasObeid9-02/library-system/pkg/authors"
	"github.com/EliasObeid9-02/library-system/pkg/binder"
	"github.com/EliasObeid9-02/library-system/pkg/books"
	"github.com/EliasObeid9-02/library-system/pkg/categories"
	"github.com/EliasObeid9-02/library-system/pkg/config"
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/lending"
	"github.com/EliasObeid9-02/library-system/pkg/mail"
	"github.com/EliasObeid9-02/library-system/pkg/passwordreset"
	"github.com/EliasObeid9-02/library-system/pkg/publications"
	"github.com/EliasObeid9-02/library-system/pkg/reviews"
	"github.com/EliasObeid9-02/library-system/pkg/users"
)

func New(cfg *config.Config, db *bun.DB, mailer mail.Mailer) (*http.Server, error) {
	e, err := newEcho(cfg, db, mailer)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, mailer mail.Mailer) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	authService := auth.NewService(db, cfg.TokenTTL)
	authMiddleware := auth.NewMiddleware(authService)
	userService := users.NewService(db)
	resetService := passwordreset.NewService(db, userService, mailer, cfg.ResetTokenTTL, cfg.PasswordResetURL)
	lendingService := lending.NewService(db, cfg.LoanPeriod)

	api := e.Group("/api")

	// Login and reset requests are throttled separately so one can't starve
	// the other.
	authGroup := api.Group("/auth")
	auth.RegisterRoutesWithGroup(authGroup, authService, authMiddleware, auth.NewThrottle(cfg.ThrottleRatePerMinute, cfg.ThrottleBurst))
	passwordreset.RegisterRoutesWithGroup(authGroup, resetService, auth.NewThrottle(cfg.ThrottleRatePerMinute, cfg.ThrottleBurst))

	users.RegisterRoutesWithGroup(api, userService, authMiddleware)

	library := api.Group("/library")
	authors.RegisterRoutesWithGroup(library.Group("/author"), authors.NewService(db), authMiddleware)
	categories.RegisterRoutesWithGroup(library.Group("/category"), categories.NewService(db), authMiddleware)
	publications.RegisterRoutesWithGroup(library.Group("/publication"), publications.NewService(db), authMiddleware)
	books.RegisterRoutesWithGroup(library.Group("/book"), books.NewService(db), lendingService, authMiddleware)
	lending.RegisterRoutesWithGroup(library.Group("/book_instance"), lendingService, authMiddleware)

	reviews.RegisterRoutesWithGroup(api.Group("/reviews"), reviews.NewService(db), authMiddleware)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
