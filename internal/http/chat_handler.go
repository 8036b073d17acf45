package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zephyros1603/urbanup/internal/constants"
	dto "github.com/zephyros1603/urbanup/internal/data_models"
	middleware "github.com/zephyros1603/urbanup/internal/http/middlewares"
	"github.com/zephyros1603/urbanup/internal/services"
)

type ChatHandler struct {
	chat     *services.ChatService
	matching *services.MatchingService
}

func NewChatHandler(chat *services.ChatService, matching *services.MatchingService) *ChatHandler {
	return &ChatHandler{chat: chat, matching: matching}
}

// CreateChat is the get-or-create entry point. A candidate fulfiller engages
// directly; a poster may open the channel toward a named fulfiller.
func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req dto.CreateChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	caller := middleware.CallerID(c)
	fulfillerID := caller
	if req.FulfillerID != "" {
		task, err := h.matching.GetTask(c.Request().Context(), req.TaskID)
		if err != nil {
			return respondError(c, err)
		}
		if task.PosterID == caller {
			fulfillerID = req.FulfillerID
		}
	}

	chat, err := h.chat.GetOrCreateTaskChat(c.Request().Context(), req.TaskID, fulfillerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) ListChats(c echo.Context) error {
	chats, err := h.chat.GetUserChats(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, chats)
}

func (h *ChatHandler) GetChat(c echo.Context) error {
	chat, err := h.chat.GetChatByID(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	messages, err := h.chat.GetChatMessages(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req dto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	message, err := h.chat.SendMessage(c.Request().Context(),
		c.Param("id"), middleware.CallerID(c),
		req.Content, constants.MessageType(req.Type), req.Attachments)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	if err := h.chat.MarkMessagesRead(c.Request().Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ChatHandler) UnreadCount(c echo.Context) error {
	count, err := h.chat.UnreadMessageCount(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

func intQuery(c echo.Context, name string, defaultVal int) int {
	if v := c.QueryParam(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
