package handler

// Response is the success/failure envelope shared by every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func NewSuccessResponse(message string) *Response {
	return &Response{Success: true, Message: message}
}

func NewErrorResponse(message string) *Response {
	return &Response{Success: false, Message: message}
}
