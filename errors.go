package repogen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested object does not exist.
	ErrNotFound = errors.New("repogen: object not found")

	// ErrInvalidInput is returned when a payload or argument is rejected
	// before it reaches the delegate.
	ErrInvalidInput = errors.New("repogen: invalid input")

	// ErrRequiredRelation is returned by a relation accessor when a join
	// column of a required relation is absent on the instance.
	ErrRequiredRelation = errors.New("repogen: required relation column is absent")

	// ErrNoSource is returned when an object manager is used before its
	// data source was configured.
	ErrNoSource = errors.New("repogen: no data source configured")
)

// Error codes and HTTP status codes reported by the service layer.
const (
	CodeNotFound     = "OBJECT_NOT_FOUND"
	CodeCreate       = "CREATE_ERROR"
	CodeUpdate       = "UPDATE_ERROR"
	CodeDelete       = "DELETE_ERROR"
	CodeUpsert       = "UPSERT_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
)

// NotFoundError represents an error when an object is not found.
type NotFoundError struct {
	label string
	where Where // Optional: the filter that matched nothing
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if len(e.where) > 0 {
		return fmt.Sprintf("repogen: %s not found (where=%v)", e.label, e.where)
	}
	return fmt.Sprintf("repogen: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the model label.
func (e *NotFoundError) Label() string {
	return e.label
}

// Code returns the service error code.
func (*NotFoundError) Code() string { return CodeNotFound }

// StatusCode returns the HTTP status code.
func (*NotFoundError) StatusCode() int { return 404 }

// NewNotFoundError returns a new NotFoundError for the given model.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWhere returns a new NotFoundError with the filter that was used.
func NewNotFoundErrorWhere(label string, where Where) *NotFoundError {
	return &NotFoundError{label: label, where: where}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// MutationError wraps a failed create, update, upsert or delete.
type MutationError struct {
	Model string // Model being mutated
	Op    string // "create", "update", "upsert" or "delete"
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("repogen: %s %s: %v", e.Op, e.Model, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// Code returns the service error code of the operation.
func (e *MutationError) Code() string {
	switch e.Op {
	case "create":
		return CodeCreate
	case "update":
		return CodeUpdate
	case "upsert":
		return CodeUpsert
	default:
		return CodeDelete
	}
}

// StatusCode returns the HTTP status code.
func (*MutationError) StatusCode() int { return 500 }

// NewMutationError returns a new MutationError.
func NewMutationError(model, op string, err error) *MutationError {
	return &MutationError{Model: model, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}

// InvalidInputError reports a rejected payload or argument.
type InvalidInputError struct {
	msg string
}

// Error returns the error string.
func (e *InvalidInputError) Error() string {
	return "repogen: invalid input: " + e.msg
}

// Is reports whether the target error matches InvalidInputError.
func (e *InvalidInputError) Is(err error) bool {
	return err == ErrInvalidInput
}

// Code returns the service error code.
func (*InvalidInputError) Code() string { return CodeInvalidInput }

// StatusCode returns the HTTP status code.
func (*InvalidInputError) StatusCode() int { return 400 }

// NewInvalidInputError returns a new InvalidInputError.
func NewInvalidInputError(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{msg: fmt.Sprintf(format, args...)}
}

// RelationError is returned when a required relation cannot be traversed
// because one of its join columns is absent on the instance.
type RelationError struct {
	Model    string // Model holding the relation
	Relation string // Relation field name
	Field    string // Absent join column
}

// Error returns the error string.
func (e *RelationError) Error() string {
	return fmt.Sprintf("repogen: relation %s.%s requires field %q to be present", e.Model, e.Relation, e.Field)
}

// Is reports whether the target error matches RelationError.
func (e *RelationError) Is(err error) bool {
	return err == ErrRequiredRelation
}

// NewRelationError returns a new RelationError.
func NewRelationError(model, relation, field string) *RelationError {
	return &RelationError{Model: model, Relation: relation, Field: field}
}

// IsRelationError returns true if the error is a RelationError.
func IsRelationError(err error) bool {
	if err == nil {
		return false
	}
	var e *RelationError
	return errors.As(err, &e)
}
