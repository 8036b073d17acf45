package errors

var (
	ErrAlreadyApplied      = Conflict("user has already applied for this task")
	ErrApplicantUnverified = Conflict("user must be verified to apply for tasks")
)
