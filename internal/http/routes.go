package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/zephyros1603/urbanup/internal/http/middlewares"
	"github.com/zephyros1603/urbanup/internal/http/validators"
	"github.com/zephyros1603/urbanup/internal/identity"
	"github.com/zephyros1603/urbanup/internal/realtime"
)

func Register(
	e *echo.Echo,
	tasks *TaskHandler,
	chats *ChatHandler,
	notifications *NotificationHandler,
	ws *realtime.Handler,
	verifier identity.TokenVerifier,
	rateLimitPerMinute int,
) {
	e.Validator = validators.New()
	limiter := middleware.RateLimiter(rateLimitPerMinute, time.Minute)

	// The websocket endpoint authenticates itself at connect time, so its
	// rate limit buckets by client address.
	e.GET("/ws", ws.HandleConnection, limiter)

	// Auth runs before the limiter so API buckets are per user.
	api := e.Group("/api/v1", middleware.Auth(verifier), limiter)

	api.POST("/tasks", tasks.CreateTask)
	api.GET("/tasks", tasks.SearchTasks)
	api.GET("/tasks/posted", tasks.PostedTasks)
	api.GET("/tasks/assigned", tasks.AssignedTasks)
	api.GET("/tasks/:id", tasks.GetTask)
	api.PUT("/tasks/:id", tasks.UpdateTask)
	api.POST("/tasks/:id/cancel", tasks.CancelTask)
	api.POST("/tasks/:id/complete", tasks.CompleteTask)
	api.POST("/tasks/:id/confirm", tasks.ConfirmTask)

	api.POST("/tasks/:id/applications", tasks.Apply)
	api.GET("/tasks/:id/applications", tasks.ListApplications)
	api.POST("/tasks/:id/applications/:applicationId/accept", tasks.AcceptApplication)
	api.POST("/applications/:applicationId/reject", tasks.RejectApplication)
	api.POST("/applications/:applicationId/withdraw", tasks.WithdrawApplication)
	api.GET("/applications/mine", tasks.MyApplications)

	api.POST("/chats", chats.CreateChat)
	api.GET("/chats", chats.ListChats)
	api.GET("/chats/unread-count", chats.UnreadCount)
	api.GET("/chats/:id", chats.GetChat)
	api.GET("/chats/:id/messages", chats.ListMessages)
	api.POST("/chats/:id/messages", chats.SendMessage)
	api.POST("/chats/:id/read", chats.MarkRead)

	api.GET("/presence/:userId", ws.Presence)

	api.GET("/notifications", notifications.List)
	api.GET("/notifications/unread-count", notifications.UnreadCount)
	api.POST("/notifications/:id/read", notifications.MarkRead)
	api.POST("/notifications/read-all", notifications.MarkAllRead)
}
