package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a schema definition error.
	ErrInvalidSchema = errors.New("repogen: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("repogen: missing configuration")
	// ErrIntrospectionMismatch indicates that a model or field of the schema
	// has no counterpart in the introspected client types.
	ErrIntrospectionMismatch = errors.New("repogen: schema and introspected types disagree")
	// ErrUnresolvedRelation indicates a relation whose join could not be resolved.
	ErrUnresolvedRelation = errors.New("repogen: unresolved relation")
	// ErrNamingCollision indicates two generated identifiers coincide.
	ErrNamingCollision = errors.New("repogen: naming collision")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("repogen: code generation failed")
)

// SchemaError represents a schema definition error.
type SchemaError struct {
	Model   string // Model name
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("repogen: schema error")
	switch {
	case e.Model != "" && e.Field != "":
		fmt.Fprintf(&b, " on %s.%s", e.Model, e.Field)
	case e.Model != "":
		fmt.Fprintf(&b, " on model %s", e.Model)
	}
	return detail(&b, e.Message, e.Cause)
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(model, field, message string, cause error) *SchemaError {
	return &SchemaError{
		Model:   model,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("repogen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("repogen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IntrospectionError reports a model or field of the schema that the
// introspected client surface does not declare.
type IntrospectionError struct {
	Model string
	Field string // Empty when the whole model is missing
	Cause error
}

// Error implements the error interface.
func (e *IntrospectionError) Error() string {
	var b strings.Builder
	if e.Field != "" {
		fmt.Fprintf(&b, "repogen: introspection mismatch on %s.%s", e.Model, e.Field)
	} else {
		fmt.Fprintf(&b, "repogen: introspection mismatch on model %s", e.Model)
	}
	return detail(&b, "", e.Cause)
}

// Unwrap returns the underlying error.
func (e *IntrospectionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for IntrospectionError.
func (e *IntrospectionError) Is(target error) bool {
	return target == ErrIntrospectionMismatch
}

// NewIntrospectionError creates a new IntrospectionError.
func NewIntrospectionError(model, field string, cause error) *IntrospectionError {
	return &IntrospectionError{
		Model: model,
		Field: field,
		Cause: cause,
	}
}

// RelationError represents a relation whose join columns could not be resolved.
type RelationError struct {
	Model    string // Model holding the relation field
	Field    string // Relation field
	Relation string // Relation name
	Message  string
}

// Error implements the error interface.
func (e *RelationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "repogen: relation error on %s.%s", e.Model, e.Field)
	if e.Relation != "" {
		fmt.Fprintf(&b, " (relation %q)", e.Relation)
	}
	return detail(&b, e.Message, nil)
}

// Is reports whether the target matches the sentinel error for RelationError.
func (e *RelationError) Is(target error) bool {
	return target == ErrUnresolvedRelation
}

// NewRelationError creates a new RelationError.
func NewRelationError(model, field, relation, message string) *RelationError {
	return &RelationError{
		Model:    model,
		Field:    field,
		Relation: relation,
		Message:  message,
	}
}

// NamingError reports two generated identifiers that coincide.
type NamingError struct {
	Model string // Model whose struct holds the collision; empty for package scope
	Name  string // Colliding identifier
	First string // What first claimed the name
	Other string // What claimed it again
}

// Error implements the error interface.
func (e *NamingError) Error() string {
	scope := "package scope"
	if e.Model != "" {
		scope = "model " + e.Model
	}
	return fmt.Sprintf("repogen: naming collision in %s: %q is derived from both %s and %s", scope, e.Name, e.First, e.Other)
}

// Is reports whether the target matches the sentinel error for NamingError.
func (e *NamingError) Is(target error) bool {
	return target == ErrNamingCollision
}

// NewNamingError creates a new NamingError.
func NewNamingError(model, name, first, other string) *NamingError {
	return &NamingError{
		Model: model,
		Name:  name,
		First: first,
		Other: other,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "core", "service", "scaffold", "write", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("repogen: generation error")
	if e.Phase != "" {
		fmt.Fprintf(&b, " in phase %s", e.Phase)
	}
	if e.File != "" {
		fmt.Fprintf(&b, " (file: %s)", e.File)
	}
	return detail(&b, e.Message, e.Cause)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// detail appends the optional message and cause to b.
func detail(b *strings.Builder, message string, cause error) string {
	if message != "" {
		b.WriteString(": ")
		b.WriteString(message)
	}
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsIntrospectionError reports whether the error is an IntrospectionError.
func IsIntrospectionError(err error) bool {
	var introErr *IntrospectionError
	return errors.As(err, &introErr)
}

// IsRelationError reports whether the error is a RelationError.
func IsRelationError(err error) bool {
	var relErr *RelationError
	return errors.As(err, &relErr)
}

// IsNamingError reports whether the error is a NamingError.
func IsNamingError(err error) bool {
	var namingErr *NamingError
	return errors.As(err, &namingErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
