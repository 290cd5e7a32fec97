package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lucas-podkowa/library-service/internal/errs"
	"github.com/lucas-podkowa/library-service/pkg/auth"
	md "github.com/lucas-podkowa/library-service/pkg/middleware"
	"github.com/lucas-podkowa/library-service/pkg/validate"
)

type Handler struct {
	librarySvc LibraryService
	log        *zap.Logger
}

func New(librarySrv LibraryService, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySrv,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/register", h.Register)
	api.POST("/authorize", h.Authorize)

	api.GET("/books", h.GetBooks)
	api.GET("/books/available", h.GetAvailableBooks)
	api.GET("/books/:id", h.GetBook)

	authed := api.Group("", md.JwtAuthentication)

	authed.POST("/books", h.CreateBook)
	authed.PUT("/books/:id", h.UpdateBook)
	authed.DELETE("/books/:id", h.DeleteBook)
	authed.PATCH("/books/:id/stock", h.UpdateStock)

	authed.POST("/loans", h.CreateLoan)
	authed.GET("/loans", h.GetLoans)
	authed.GET("/loans/:id", h.GetLoan)
	authed.PUT("/loans/:id/return", h.ReturnLoan)
	authed.DELETE("/loans/:id", h.CancelLoan)
	authed.GET("/loans/user/:userId", h.GetLoansByUser)
	authed.GET("/loans/book/:bookId", h.GetLoansByBook)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// principal pulls the authenticated actor set by the jwt middleware.
func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "no principal")
	}
	return p, nil
}

// httpError maps the domain error taxonomy onto statuses. Out-of-stock,
// duplicate-loan and lock contention all come back as 409 so clients
// can retry the latter safely.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrOutOfStock),
		errors.Is(err, errs.ErrLoanExists),
		errors.Is(err, errs.ErrInsufficientStock),
		errors.Is(err, errs.ErrEmailExists),
		errors.Is(err, errs.ErrBusy):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
