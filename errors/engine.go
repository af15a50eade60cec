package errors

import "net/http"

// TypeMismatch creates a new AppError for a value whose runtime type does
// not match its declared CType.
func TypeMismatch(context, expected, actual string) *AppError {
	return &AppError{
		Code: ErrCodeTypeMismatch, Message: "value type does not match declared type",
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"context": context, "expected": expected, "actual": actual},
	}
}

// NodeNotFound creates a new AppError for a dependency edge referencing an
// id absent from the DagSpec.
func NodeNotFound(nodeID string) *AppError {
	return &AppError{
		Code: ErrCodeNodeNotFound, Message: "node not found in pipeline",
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"nodeId": nodeID},
	}
}

// CycleDetected creates a new AppError for a DagSpec whose dependency graph
// is not acyclic.
func CycleDetected(processed, total int) *AppError {
	return &AppError{
		Code: ErrCodeCycleDetected, Message: "cycle detected in pipeline dependency graph",
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"processed": processed, "total": total},
	}
}

// ValidationError creates a new AppError for a DagSpec that failed a
// load-time invariant.
func ValidationError(reason string) *AppError {
	return &AppError{
		Code: ErrCodeValidationError, Message: reason,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// InputValidation creates a new AppError for a provided input value that
// failed validation against its declared type.
func InputValidation(nodeID, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInputValidation, Message: reason,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"nodeId": nodeID},
	}
}

// ModuleExecution creates a new AppError wrapping a failure returned by a
// module's callable.
func ModuleExecution(nodeID string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeModuleExecution, Message: "module execution failed",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"nodeId": nodeID}, Cause: cause,
	}
}

// DataNotFound creates a new AppError for a requested computed value absent
// from an execution's value table.
func DataNotFound(nodeID string) *AppError {
	return &AppError{
		Code: ErrCodeDataNotFound, Message: "no computed value for node",
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"nodeId": nodeID},
	}
}

// PipelineChanged creates a new AppError for a resume attempt whose
// structural hash no longer matches the current DagSpec.
func PipelineChanged(expected, actual string) *AppError {
	return &AppError{
		Code: ErrCodePipelineChanged, Message: "pipeline structure changed since suspension",
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"expectedHash": expected, "actualHash": actual},
	}
}

// ResumeInProgress creates a new AppError for a second resumer attempting to
// claim an execution already being resumed.
func ResumeInProgress(executionID string) *AppError {
	return &AppError{
		Code: ErrCodeResumeInProgress, Message: "execution is already being resumed",
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"executionId": executionID},
	}
}

// PipelineNotFound creates a new AppError for a pipeline image or alias
// absent from the pipeline store.
func PipelineNotFound(ref string) *AppError {
	return &AppError{
		Code: ErrCodePipelineNotFound, Message: "pipeline not found",
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"ref": ref},
	}
}

// ResourceExhausted creates a new AppError for a JSON conversion that
// exceeded a payload size, collection length, or nesting depth limit.
func ResourceExhausted(resource string) *AppError {
	return &AppError{
		Code: ErrCodeResourceExhausted, Message: "resource exhausted",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
		Details: map[string]any{"resource": resource},
	}
}

// Codec creates a new AppError for a failure encoding or decoding a
// suspended execution or canonical DagSpec text representation.
func Codec(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCodec, Message: "encode/decode failed",
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}
