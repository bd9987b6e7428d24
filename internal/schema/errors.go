package schema

import "errors"

var (
	// ErrInvalidTarget is returned when metadata is attached without a
	// declaration or field name
	ErrInvalidTarget = errors.New("invalid annotation target")

	// ErrNotRegistered is returned when rendering a declaration that never
	// received any metadata
	ErrNotRegistered = errors.New("declaration not registered")

	// ErrUnknownFieldType is returned for type tags outside the known set
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrUnknownDeclaration is returned when a name does not resolve to a
	// declared declaration
	ErrUnknownDeclaration = errors.New("unknown declaration")
)
