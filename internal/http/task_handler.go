package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zephyros1603/urbanup/internal/constants"
	dto "github.com/zephyros1603/urbanup/internal/data_models"
	middleware "github.com/zephyros1603/urbanup/internal/http/middlewares"
	"github.com/zephyros1603/urbanup/internal/services"
)

type TaskHandler struct {
	matching *services.MatchingService
}

func NewTaskHandler(matching *services.MatchingService) *TaskHandler {
	return &TaskHandler{matching: matching}
}

func (h *TaskHandler) toInput(req *dto.CreateTaskRequest) services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:                  req.Title,
		Description:            req.Description,
		Category:               constants.TaskCategory(req.Category),
		PricingType:            constants.PricingType(req.PricingType),
		Price:                  req.Price,
		Location:               req.Location,
		Latitude:               req.Latitude,
		Longitude:              req.Longitude,
		AddressDetails:         req.AddressDetails,
		Deadline:               req.Deadline,
		EstimatedDurationHours: req.EstimatedDurationHours,
		IsUrgent:               req.IsUrgent,
		SpecialInstructions:    req.SpecialInstructions,
	}
}

func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	task, err := h.matching.CreateTask(c.Request().Context(), middleware.CallerID(c), h.toInput(&req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	task, err := h.matching.UpdateTask(c.Request().Context(), c.Param("id"), middleware.CallerID(c), h.toInput(&req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.matching.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) SearchTasks(c echo.Context) error {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	tasks, err := h.matching.SearchTasks(c.Request().Context(),
		constants.TaskStatus(c.QueryParam("status")),
		constants.TaskCategory(c.QueryParam("category")),
		limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *TaskHandler) PostedTasks(c echo.Context) error {
	tasks, err := h.matching.TasksByPoster(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) AssignedTasks(c echo.Context) error {
	tasks, err := h.matching.TasksByFulfiller(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CancelTask(c echo.Context) error {
	var req dto.CancelTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	task, err := h.matching.CancelTask(c.Request().Context(), c.Param("id"), middleware.CallerID(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Apply(c echo.Context) error {
	var req dto.ApplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	application, err := h.matching.ApplyForTask(c.Request().Context(),
		c.Param("id"), middleware.CallerID(c),
		req.Message, req.ProposedPrice, req.EstimatedCompletionTime)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, application)
}

func (h *TaskHandler) ListApplications(c echo.Context) error {
	applications, err := h.matching.ApplicationsForTask(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, applications)
}

func (h *TaskHandler) MyApplications(c echo.Context) error {
	applications, err := h.matching.ApplicationsByUser(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, applications)
}

func (h *TaskHandler) AcceptApplication(c echo.Context) error {
	task, err := h.matching.AcceptApplication(c.Request().Context(),
		c.Param("id"), c.Param("applicationId"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) RejectApplication(c echo.Context) error {
	var req dto.RejectApplicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	if err := h.matching.RejectApplication(c.Request().Context(),
		c.Param("applicationId"), middleware.CallerID(c), req.ResponseMessage); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TaskHandler) WithdrawApplication(c echo.Context) error {
	if err := h.matching.WithdrawApplication(c.Request().Context(),
		c.Param("applicationId"), middleware.CallerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TaskHandler) CompleteTask(c echo.Context) error {
	task, err := h.matching.MarkTaskCompleted(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) ConfirmTask(c echo.Context) error {
	task, err := h.matching.ConfirmTaskCompletion(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}
