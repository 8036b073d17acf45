package errors

var (
	ErrPriceNotPositive    = Validation("price must be greater than zero")
	ErrTitleRequired       = Validation("title is required")
	ErrDescriptionRequired = Validation("description is required")
	ErrContentRequired     = Validation("message content is required")
	ErrContentTooLong      = Validation("message content exceeds 1000 characters")
)
