package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeNotFound              Code = "NOT_FOUND"
	CodeDuplicateName         Code = "DUPLICATE_NAME"
	CodeInvalidVariants       Code = "INVALID_VARIANTS"
	CodeAlreadyExists         Code = "ALREADY_EXISTS"
	CodeInconsistentReference Code = "INCONSISTENT_REFERENCE"
	CodeRateLimit             Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal              Code = "INTERNAL_ERROR"
	CodeDependency            Code = "DEPENDENCY_ERROR"
)

// Entity kinds reported in NotFound details.
const (
	EntityCategory    = "category"
	EntitySubCategory = "subcategory"
	EntityProduct     = "product"
	EntityWishlist    = "wishlist"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "access denied",
	},
	CodeNotFound: {
		HTTPStatus:     http.StatusNotFound,
		PublicMessage:  "resource not found",
		DetailsAllowed: true,
	},
	CodeDuplicateName: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "name already exists",
	},
	CodeInvalidVariants: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "at least one variant is required",
	},
	CodeAlreadyExists: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "already exists",
	},
	CodeInconsistentReference: {
		HTTPStatus:     http.StatusNotFound,
		PublicMessage:  "reference does not belong to its parent",
		DetailsAllowed: true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		PublicMessage: "rate limit exceeded",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

// NotFound builds a NOT_FOUND error tagged with the missing entity kind.
func NotFound(entity, message string) *Error {
	return New(CodeNotFound, message).WithDetails(map[string]string{"entity": entity})
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// Entity returns the entity kind attached by NotFound, if any.
func (e *Error) Entity() string {
	if e == nil {
		return ""
	}
	if m, ok := e.details.(map[string]string); ok {
		return m["entity"]
	}
	return ""
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
