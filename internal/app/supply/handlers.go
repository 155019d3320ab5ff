package supply

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
)

// ManagementServiceImpl exposes the booking pipeline over HTTP.
type ManagementServiceImpl struct {
	Service Service
}

// NewManagementService will return a new ManagementServiceImpl
func NewManagementService(service Service) *ManagementServiceImpl {
	return &ManagementServiceImpl{
		Service: service,
	}
}

// CreateSuppliesRequest contains the schedule template text for new bookings
type CreateSuppliesRequest struct {
	Text   string `json:"text"`
	ChatID int64  `json:"chat_id"`
}

// CreateSuppliesResponse contains the created tasks or the template parse errors
type CreateSuppliesResponse struct {
	Tasks  []*domain.Task `json:"tasks,omitempty"`
	Errors []string       `json:"errors,omitempty"`
}

// HandleCreateSupplies parses a schedule template and queues one booking task per product line
func (svc *ManagementServiceImpl) HandleCreateSupplies(c echo.Context) error {
	req := CreateSuppliesRequest{}
	if err := c.Bind(&req); err != nil {
		zap.L().Error("invalid request, failed to unmarshall json", zap.Error(err))
		return c.String(http.StatusBadRequest, fmt.Sprintf("failed to unmarshall json: %s", err.Error()))
	}
	if req.Text == "" {
		return c.String(http.StatusBadRequest, "text is required")
	}

	tasks, parseErrs, err := svc.Service.CreateFromTemplate(c.Request().Context(), req.Text, req.ChatID)
	if err != nil {
		zap.L().Error("failed to create supply tasks", zap.Error(err))
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if len(parseErrs) > 0 {
		return c.JSON(http.StatusBadRequest, CreateSuppliesResponse{Errors: parseErrs})
	}

	return c.JSON(http.StatusOK, CreateSuppliesResponse{Tasks: tasks})
}

// ListSuppliesResponse contains every stored booking task
type ListSuppliesResponse struct {
	Tasks []*domain.Task `json:"tasks"`
}

// HandleListSupplies returns all booking tasks
func (svc *ManagementServiceImpl) HandleListSupplies(c echo.Context) error {
	tasks, err := svc.Service.List(c.Request().Context())
	if err != nil {
		zap.L().Error("failed to list supply tasks", zap.Error(err))
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ListSuppliesResponse{Tasks: tasks})
}

// HandleGetSupply returns a single booking task by id
func (svc *ManagementServiceImpl) HandleGetSupply(c echo.Context) error {
	t, err := svc.Service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return c.String(http.StatusNotFound, err.Error())
		}
		zap.L().Error("failed to load supply task", zap.Error(err))
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

// HandleCancelSupply stops a booking task permanently
func (svc *ManagementServiceImpl) HandleCancelSupply(c echo.Context) error {
	if err := svc.Service.Cancel(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return c.String(http.StatusNotFound, err.Error())
		}
		zap.L().Error("failed to cancel supply task", zap.Error(err))
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleRetrySupply resets a finished task back to the start of the pipeline
func (svc *ManagementServiceImpl) HandleRetrySupply(c echo.Context) error {
	if err := svc.Service.Retry(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return c.String(http.StatusNotFound, err.Error())
		}
		if errors.Is(err, ErrNotRetryable) {
			return c.String(http.StatusBadRequest, err.Error())
		}
		zap.L().Error("failed to retry supply task", zap.Error(err))
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// PurgeSuppliesRequest selects between retention purge and a full wipe
type PurgeSuppliesRequest struct {
	All bool `json:"all"`
}

// PurgeSuppliesResponse reports how many tasks were removed
type PurgeSuppliesResponse struct {
	Purged int64 `json:"purged"`
}

// HandlePurgeSupplies removes finished and stale tasks
func (svc *ManagementServiceImpl) HandlePurgeSupplies(c echo.Context) error {
	req := PurgeSuppliesRequest{}
	if err := c.Bind(&req); err != nil {
		zap.L().Error("invalid request, failed to unmarshall json", zap.Error(err))
		return c.String(http.StatusBadRequest, fmt.Sprintf("failed to unmarshall json: %s", err.Error()))
	}

	var purged int64
	var err error
	if req.All {
		purged, err = svc.Service.PurgeAll(c.Request().Context())
	} else {
		purged, err = svc.Service.Purge(c.Request().Context())
	}
	if err != nil {
		zap.L().Error("failed to purge supply tasks", zap.Error(err))
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, PurgeSuppliesResponse{Purged: purged})
}

// HandleTick forces a worker pass outside the regular schedule
func (svc *ManagementServiceImpl) HandleTick(c echo.Context) error {
	svc.Service.TickNow()
	return c.NoContent(http.StatusAccepted)
}
