package entity

// ErrorEntity is the failure payload sent back to a requester when a store
// operation reports failure.
type ErrorEntity struct {
	Message string `json:"message"`
}

func NewErrorEntity(message string) *ErrorEntity {
	return &ErrorEntity{Message: message}
}

func (e *ErrorEntity) Error() string {
	return e.Message
}
