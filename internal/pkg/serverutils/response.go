package serverutils

// Envelope is the uniform JSON response shape for every endpoint.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Envelope[T] {
	return Envelope[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Envelope[any] {
	return Envelope[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}
