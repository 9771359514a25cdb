package dto

// Response is the envelope every endpoint replies with. Exactly one of
// Data and Error is set; Meta accompanies paginated collections.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo carries a stable error code plus a client-safe message.
// RequestID lets a client quote the failing request when reporting it.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes a single invalid request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta holds pagination counters for list responses.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta derives the page count from the total.
func NewMeta(total int64, page, pageSize int) *Meta {
	m := &Meta{Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		m.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return m
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    NewMeta(total, page, pageSize),
	}
}

func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	}
}

func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message, RequestID: requestID},
	}
}

// NewValidationErrorResponse reports binding failures field by field.
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	}
}

// ListRequest carries the query parameters shared by list endpoints.
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// IDRequest binds the uuid path parameter of item endpoints.
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
