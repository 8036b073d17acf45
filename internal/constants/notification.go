package constants

type NotificationKind string

const (
	NotifyTaskPosted          NotificationKind = "TASK_POSTED"
	NotifyNewApplication      NotificationKind = "NEW_APPLICATION"
	NotifyApplicationAccepted NotificationKind = "APPLICATION_ACCEPTED"
	NotifyApplicationRejected NotificationKind = "APPLICATION_REJECTED"
	NotifyTaskCompleted       NotificationKind = "TASK_COMPLETED"
	NotifyTaskCancelled       NotificationKind = "TASK_CANCELLED"
	NotifyReviewRequest       NotificationKind = "REVIEW_REQUEST"
	NotifyNewMessage          NotificationKind = "NEW_MESSAGE"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityNormal NotificationPriority = "NORMAL"
	PriorityHigh   NotificationPriority = "HIGH"
)
