package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/pkg/auth"
	mw "github.com/Astemirdum/booking-service/pkg/middleware"
	"github.com/Astemirdum/booking-service/pkg/validate"
	"github.com/Astemirdum/booking-service/reservation/internal/errs"
	"github.com/Astemirdum/booking-service/reservation/internal/model"
	_ "github.com/Astemirdum/booking-service/reservation/swagger"
)

type Handler struct {
	reservationSvc ReservationService
	creds          *auth.Credentials
	sessions       auth.SessionStore
	tokens         *auth.Tokens
	sessionTTL     time.Duration
	log            *zap.Logger
}

// New wires the handlers. tokens may be nil when bearer tokens are disabled.
func New(reservationSvc ReservationService, creds *auth.Credentials, sessions auth.SessionStore, tokens *auth.Tokens, sessionTTL time.Duration, log *zap.Logger) *Handler {
	return &Handler{
		reservationSvc: reservationSvc,
		creds:          creds,
		sessions:       sessions,
		tokens:         tokens,
		sessionTTL:     sessionTTL,
		log:            log.Named("handler"),
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
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Validator = validate.NewCustomValidator()

	base := e.Group("", mw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		mw.NewRateLimiter(apiRPS),
	)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	gated := api.Group("", auth.Gate(h.creds, h.sessions, h.tokens, h.log))
	gated.POST("/reservations/confirm", h.ConfirmReservation)
	gated.POST("/reservations", h.CreateReservation)
	gated.GET("/reservations", h.GetReservations)
	gated.GET("/reservations/:id", h.GetReservation)
	gated.PUT("/reservations/:id", h.UpdateReservation)
	gated.DELETE("/reservations/:id", h.DeleteReservation)
	gated.GET("/calendar", h.GetCalendar)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ConfirmReservation(c echo.Context) error {
	var in model.ReservationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.reservationSvc.Check(c.Request().Context(), in); err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, in)
}

func (h *Handler) CreateReservation(c echo.Context) error {
	var in model.ReservationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rsv, err := h.reservationSvc.Submit(c.Request().Context(), in)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, rsv)
}

// GetReservations lists every reservation, or filters by ?date= or ?name=.
func (h *Handler) GetReservations(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		items []model.Reservation
		err   error
	)
	switch date, name := c.QueryParam("date"), c.QueryParam("name"); {
	case date != "":
		items, err = h.reservationSvc.ListForDate(ctx, date)
	case name != "":
		items, err = h.reservationSvc.SearchByName(ctx, name)
	default:
		items, err = h.reservationSvc.ListAll(ctx)
	}
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, model.ListReservations{
		TotalElements: len(items),
		Items:         items,
	})
}

func (h *Handler) GetReservation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rsv, err := h.reservationSvc.Get(c.Request().Context(), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, rsv)
}

func (h *Handler) UpdateReservation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in model.ReservationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rsv, err := h.reservationSvc.Amend(c.Request().Context(), id, in)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, rsv)
}

func (h *Handler) DeleteReservation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.reservationSvc.Remove(c.Request().Context(), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCalendar defaults to the current month when year or month is absent.
func (h *Handler) GetCalendar(c echo.Context) error {
	today := h.reservationSvc.Today()
	year, err := intQuery(c, "year", today.Year)
	if err != nil {
		return err
	}
	month, err := intQuery(c, "month", today.Month)
	if err != nil {
		return err
	}
	cal, err := h.reservationSvc.Calendar(c.Request().Context(), year, month)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, cal)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Message: "invalid " + name,
			Reason:  errs.ReasonMalformedDateTime,
		})
	}
	return v, nil
}

func (h *Handler) httpError(err error) error {
	resp := errs.ErrorResponse{Message: err.Error(), Reason: errs.Reason(err)}
	switch {
	case errs.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, resp)
	case errors.Is(err, errs.ErrDuplicateSlot):
		return echo.NewHTTPError(http.StatusConflict, resp)
	case errors.Is(err, errs.ErrRecordMissing):
		return echo.NewHTTPError(http.StatusNotFound, resp)
	default:
		h.log.Error("internal", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
