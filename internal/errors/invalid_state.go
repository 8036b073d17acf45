package errors

var (
	ErrTaskNotOpen        = InvalidState("task no longer open")
	ErrTaskNotInProgress  = InvalidState("task must be in progress")
	ErrTaskNotCompleted   = InvalidState("task must be completed before confirmation")
	ErrTaskNotCancellable = InvalidState("task can no longer be cancelled")
	ErrTaskClosed         = InvalidState("task has reached a terminal state")
	ErrApplicationClosed  = InvalidState("application is no longer pending")
	ErrChatInactive       = InvalidState("chat is closed")
)
