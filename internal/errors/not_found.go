package errors

var (
	ErrTaskNotFound         = NotFound("task not found")
	ErrApplicationNotFound  = NotFound("application not found")
	ErrChatNotFound         = NotFound("chat not found")
	ErrUserNotFound         = NotFound("user not found")
	ErrNotificationNotFound = NotFound("notification not found")
)
