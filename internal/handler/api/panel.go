package api

import (
	"errors"

	models "CurvePull/internal/domain/models"
	"CurvePull/internal/usecase"
	xhttp "CurvePull/pkg/http"
	xlogger "CurvePull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PanelHandler serves the processed panel and its derived views over HTTP.
type PanelHandler struct {
	logger *xlogger.Logger
	svc    *usecase.PanelService
}

func NewPanelHandler(logger *xlogger.Logger, svc *usecase.PanelService) *PanelHandler {
	return &PanelHandler{logger: logger, svc: svc}
}

func (h *PanelHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/panel", h.Panel)
	g.GET("/slopes", h.Slopes)
	g.GET("/changes", h.Changes)
	g.GET("/vol", h.Vol)
	g.GET("/spread", h.Spread)
	g.POST("/refresh", h.Refresh)
}

func (h *PanelHandler) Panel(c echo.Context) error {
	view, err := h.svc.Panel()
	if err != nil {
		return h.serviceError(c, "panel", err)
	}
	return xhttp.SuccessResponse(c, view)
}

func (h *PanelHandler) Slopes(c echo.Context) error {
	view, err := h.svc.Slopes()
	if err != nil {
		return h.serviceError(c, "slopes", err)
	}
	return xhttp.SuccessResponse(c, view)
}

func (h *PanelHandler) Changes(c echo.Context) error {
	req := &models.ChangesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.svc.Changes(c.Request().Context(), req.Series, req.Horizon)
	if err != nil {
		return h.serviceError(c, "changes", err)
	}
	return xhttp.SuccessResponse(c, rows)
}

func (h *PanelHandler) Vol(c echo.Context) error {
	req := &models.VolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	view, err := h.svc.Vol(c.Request().Context(), req.Window)
	if err != nil {
		return h.serviceError(c, "vol", err)
	}
	return xhttp.SuccessResponse(c, view)
}

func (h *PanelHandler) Spread(c echo.Context) error {
	view, err := h.svc.Spread()
	if err != nil {
		if errors.Is(err, usecase.ErrNoPanel) {
			return h.serviceError(c, "spread", err)
		}
		return xhttp.NotFoundResponse(c, err.Error())
	}
	return xhttp.SuccessResponse(c, view)
}

func (h *PanelHandler) Refresh(c echo.Context) error {
	if err := h.svc.Refresh(c.Request().Context()); err != nil {
		return h.serviceError(c, "refresh", err)
	}
	view, err := h.svc.Panel()
	if err != nil {
		return h.serviceError(c, "refresh", err)
	}
	return xhttp.SuccessResponse(c, view)
}

func (h *PanelHandler) serviceError(c echo.Context, op string, err error) error {
	if errors.Is(err, usecase.ErrNoPanel) {
		return xhttp.NotFoundResponse(c, "panel not computed yet")
	}
	var cfgErr *models.ConfigError
	if errors.As(err, &cfgErr) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(cfgErr.Error()))
	}
	h.logger.Error(op+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError(op+" failed").WithError(err))
}
