package api

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"EuroLens/internal/domain/models"
	"EuroLens/internal/service/metrics"
	"EuroLens/internal/service/ratelimit"
	"EuroLens/internal/services/generator"
	xhttp "EuroLens/pkg/http"
	xlogger "EuroLens/pkg/logger"
)

// StatsService is the stats surface the handler needs.
type StatsService interface {
	Analyze(ctx context.Context, params models.StatsParams) (models.StatsResult, error)
	Draws(ctx context.Context, limit int) ([]models.Draw, error)
}

// TicketService is the generation surface the handler needs.
type TicketService interface {
	Generate(ctx context.Context, params models.GenerateParams) (models.GenerateResult, error)
}

// LotteryEchoHandler serves draws, stats and ticket generation.
type LotteryEchoHandler struct {
	logger  *xlogger.Logger
	stats   StatsService
	tickets TicketService
	rl      *ratelimit.Limiter
}

func NewLotteryEchoHandler(logger *xlogger.Logger, stats StatsService, tickets TicketService, rl *ratelimit.Limiter) *LotteryEchoHandler {
	metrics.Register()
	return &LotteryEchoHandler{logger: logger, stats: stats, tickets: tickets, rl: rl}
}

func (h *LotteryEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/draws", h.Draws)
	g.GET("/stats", h.Stats)
	g.POST("/tickets", h.Tickets, h.rateLimit("tickets"))
}

func (h *LotteryEchoHandler) Draws(c echo.Context) error {
	defer observe("draws", time.Now())
	req := &models.DrawsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues("draws", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	draws, err := h.stats.Draws(c.Request().Context(), req.LimitOrDefault())
	if err != nil {
		return h.fail(c, "draws", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.ListResponse(c, draws, int64(len(draws)))
}

func (h *LotteryEchoHandler) Stats(c echo.Context) error {
	defer observe("stats", time.Now())
	req := &models.StatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues("stats", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.stats.Analyze(c.Request().Context(), req.Params())
	if err != nil {
		return h.fail(c, "stats", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, res)
}

func (h *LotteryEchoHandler) Tickets(c echo.Context) error {
	defer observe("tickets", time.Now())
	req := &models.TicketsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues("tickets", "validation").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.tickets.Generate(c.Request().Context(), req.Params())
	if err != nil {
		return h.fail(c, "tickets", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, res)
}

func (h *LotteryEchoHandler) rateLimit(endpoint string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if h.rl == nil || h.rl.Allow(c.RealIP()+":"+endpoint) {
				return next(c)
			}
			metrics.RateLimited.WithLabelValues(endpoint).Inc()
			h.logger.Warn("rate limited",
				xlogger.String("endpoint", endpoint),
				xlogger.String("remote", c.RealIP()),
			)
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many ticket requests, slow down"))
		}
	}
}

func (h *LotteryEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	if errors.Is(err, generator.ErrInsufficientCandidates) {
		metrics.APIErrors.WithLabelValues(endpoint, "insufficient").Inc()
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(
			"ERR_INSUFFICIENT_CANDIDATES", "not enough numbers or stars to build a ticket",
		).WithError(err))
	}
	metrics.APIErrors.WithLabelValues(endpoint, "unavailable").Inc()
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.UnavailableError("draw history unavailable").WithError(err))
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
