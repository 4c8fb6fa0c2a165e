package domain

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

var (
	ErrTicketNotFound  = NewDomainError("ticket not found")
	ErrInvalidPage     = NewDomainError("page must be 1 or greater")
	ErrInvalidPageSize = NewDomainError("page size must be positive")
)
