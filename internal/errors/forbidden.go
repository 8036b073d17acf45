package errors

var (
	ErrNotTaskPoster    = Forbidden("only the task poster may perform this action")
	ErrNotTaskFulfiller = Forbidden("only the assigned fulfiller may perform this action")
	ErrOwnTask          = Forbidden("task poster cannot apply for their own task")
	ErrNotParticipant   = Forbidden("user is not a participant of this chat")
	ErrNotApplicant     = Forbidden("only the applicant may withdraw an application")
)
