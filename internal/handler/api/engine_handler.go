package api

import (
	"time"

	models "SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/internal/usecase"
	xhttp "SignalForge/pkg/http"
	xlogger "SignalForge/pkg/logger"
	"SignalForge/pkg/util"

	"github.com/labstack/echo/v4"
)

// EngineHandler exposes the analysis engine over HTTP.
type EngineHandler struct {
	logger  *xlogger.Logger
	engine  *usecase.EngineUseCase
	candles *usecase.CandlesUseCase
	store   domrepo.CandleStore
	// reports live stream connectivity; nil when no collector runs
	connected func() bool
}

func NewEngineHandler(logger *xlogger.Logger, engine *usecase.EngineUseCase, candles *usecase.CandlesUseCase) *EngineHandler {
	return &EngineHandler{logger: logger, engine: engine, candles: candles}
}

// SetHealthDeps injects the dependencies the health endpoint reports on.
func (h *EngineHandler) SetHealthDeps(store domrepo.CandleStore, connected func() bool) {
	h.store = store
	h.connected = connected
}

func (h *EngineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analysis)
	g.GET("/signal", h.Signal)
	g.GET("/gp", h.GP)
	g.GET("/backtest", h.Backtest)
	g.GET("/candles", h.Candles)
	g.GET("/health", h.Health)
}

func (h *EngineHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.engine.GetAnalysis(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("analysis usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.engine.GetSignal(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("signal usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if sig == nil {
		// no qualifying setup on this bar
		return xhttp.SuccessResponse(c, map[string]interface{}{
			"signal": nil,
			"symbol": req.Symbol,
			"mode":   req.Mode,
		})
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *EngineHandler) GP(c echo.Context) error {
	req := &models.GPRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.engine.GetGP(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("gp usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.engine.RunBacktest(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("backtest usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(req.From, now.AddDate(0, 0, -7))
	to := xhttp.ParseTimeDefault(req.To, now)
	from, to = util.AlignFromTo(from, to, req.Interval)

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:   req.Symbol,
		From:     from,
		To:       to,
		Interval: domrepo.NormalizeInterval(req.Interval),
		Limit:    req.Limit,
	})
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	healthy := true
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["clickhouse"] = err.Error()
			healthy = false
		} else {
			status["clickhouse"] = "ok"
		}
	}
	if h.connected != nil {
		if h.connected() {
			status["stream"] = "connected"
		} else {
			status["stream"] = "disconnected"
			healthy = false
		}
	}
	if errs := h.logger.RecentErrors(); len(errs) > 0 {
		status["recent_errors"] = errs
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return xhttp.SuccessResponse(c, status)
}

