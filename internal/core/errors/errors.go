package errors

const (
	HttpInternalError          = "internal_error"
	HttpInvalidJsonError       = "invalid_json"
	HttpMissingFieldsError     = "missing_fields"
	HttpSignatureRejectedError = "signature_rejected"
	HttpStorageError           = "storage_error"
)

// ErrorResponse is the error response body for ingestion and dashboard errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
