package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/pkg/auth"
	md "github.com/bookhub/bookhub-service/pkg/middleware"
	"github.com/bookhub/bookhub-service/pkg/validate"

	_ "github.com/bookhub/bookhub-service/swagger"
)

type Handler struct {
	books   BookService
	auth    AuthService
	authCfg auth.Config
	log     *zap.Logger
}

func New(books BookService, authSvc AuthService, authCfg auth.Config, log *zap.Logger) *Handler {
	return &Handler{
		books:   books,
		auth:    authSvc,
		authCfg: authCfg,
		log:     log,
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
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	protected := api.Group("", md.JwtAuthentication(h.authCfg))
	protected.POST("/books", h.CreateBook)
	protected.PUT("/books/:id", h.UpdateBook)
	protected.DELETE("/books/:id", h.DeleteBook)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the service error taxonomy onto status codes. Unknown
// errors become a generic 500 so internals never reach the client.
func httpError(err error) *echo.HTTPError {
	var vErr *errs.ValidationError
	switch {
	case errors.As(err, &vErr):
		return echo.NewHTTPError(http.StatusBadRequest, errs.ValidationErrorResponse{
			Message: "validation failed",
			Errors:  vErr.Fields,
		})
	case errors.Is(err, errs.ErrEmailTaken),
		errors.Is(err, errs.ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, errs.ErrForbidden.Error())
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, errs.ErrNotFound.Error())
	case errors.Is(err, errs.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, errs.ErrUnavailable.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
