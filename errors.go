package hull

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeUnregisteredCapability indicates a capability has no binding
	CodeUnregisteredCapability = "UNREGISTERED_CAPABILITY"

	// CodeNoConstructor indicates none of the supplied constructors is usable
	CodeNoConstructor = "NO_CONSTRUCTOR"

	// CodeDuplicateBinding indicates a capability is already bound
	CodeDuplicateBinding = "DUPLICATE_BINDING"

	// CodeCyclicDependency indicates the dependency graph contains a cycle
	CodeCyclicDependency = "CYCLIC_DEPENDENCY"

	// CodeConstruction indicates a constructor failed
	CodeConstruction = "CONSTRUCTION_FAILED"

	// CodeContainerSealed indicates registration after the first resolution
	CodeContainerSealed = "CONTAINER_SEALED"

	// CodeInvalidBinding indicates a malformed registration
	CodeInvalidBinding = "INVALID_BINDING"

	// CodeTypeMismatch indicates a resolved instance has an unexpected type
	CodeTypeMismatch = "TYPE_MISMATCH"
)

// =============================================================================
// SENTINEL ERRORS (for errors.Is comparisons)
// =============================================================================

// ErrUnregisteredCapability matches every *UnregisteredCapabilityError.
var ErrUnregisteredCapability = errs.NewError(CodeUnregisteredCapability, "unregistered capability", nil)

// ErrNoConstructor matches every *NoConstructorError.
var ErrNoConstructor = errs.NewError(CodeNoConstructor, "no usable constructor", nil)

// ErrDuplicateBinding matches every *DuplicateBindingError.
var ErrDuplicateBinding = errs.NewError(CodeDuplicateBinding, "duplicate binding", nil)

// ErrCyclicDependency matches every *CyclicDependencyError.
var ErrCyclicDependency = errs.NewError(CodeCyclicDependency, "cyclic dependency", nil)

// ErrConstruction matches every *ConstructionError.
var ErrConstruction = errs.NewError(CodeConstruction, "construction failed", nil)

// ErrContainerSealed is returned when registering into a container that has
// already resolved something.
var ErrContainerSealed = errs.NewError(CodeContainerSealed, "container is sealed: registration must happen before the first resolution", nil)

// ErrInvalidBinding matches malformed registrations.
var ErrInvalidBinding = errs.NewError(CodeInvalidBinding, "invalid binding", nil)

// ErrTypeMismatch is returned when a resolved instance cannot be converted to
// the requested type.
var ErrTypeMismatch = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// =============================================================================
// TYPED ERRORS
// =============================================================================

// Each typed error unwraps to a coded *errs.Error carrying the same details in
// its context, so errors.Is matches the sentinel of the same code.

// UnregisteredCapabilityError is returned when a capability has no binding.
// Requester is the capability whose constructor asked for it, or nil for a
// top-level request.
type UnregisteredCapabilityError struct {
	Capability reflect.Type
	Requester  reflect.Type

	err *errs.Error
}

func newUnregisteredCapabilityError(capability, requester reflect.Type) *UnregisteredCapabilityError {
	msg := fmt.Sprintf("capability %s is not registered", typeName(capability))
	if requester != nil {
		msg = fmt.Sprintf("capability %s (required by %s) is not registered", typeName(capability), typeName(requester))
	}

	err := errs.NewError(CodeUnregisteredCapability, msg, nil).
		WithContext("capability", typeName(capability)).(*errs.Error)
	if requester != nil {
		err = err.WithContext("requester", typeName(requester)).(*errs.Error)
	}

	return &UnregisteredCapabilityError{Capability: capability, Requester: requester, err: err}
}

func (e *UnregisteredCapabilityError) Error() string { return e.err.Error() }

// Unwrap returns the coded error.
func (e *UnregisteredCapabilityError) Unwrap() error { return e.err }

// Code returns CodeUnregisteredCapability.
func (e *UnregisteredCapabilityError) Code() string { return e.err.GetCode() }

// NoConstructorError is returned at registration when none of the supplied
// constructors can build the capability. Reasons holds one entry per rejected
// candidate.
type NoConstructorError struct {
	Capability reflect.Type
	Reasons    []string

	err *errs.Error
}

func newNoConstructorError(capability reflect.Type, reasons []string) *NoConstructorError {
	msg := fmt.Sprintf("no constructor supplied for %s", typeName(capability))
	if len(reasons) > 0 {
		msg = fmt.Sprintf("no usable constructor for %s: %s", typeName(capability), strings.Join(reasons, "; "))
	}

	err := errs.NewError(CodeNoConstructor, msg, nil).
		WithContext("capability", typeName(capability)).
		WithContext("reasons", reasons).(*errs.Error)

	return &NoConstructorError{Capability: capability, Reasons: reasons, err: err}
}

func (e *NoConstructorError) Error() string { return e.err.Error() }

// Unwrap returns the coded error.
func (e *NoConstructorError) Unwrap() error { return e.err }

// Code returns CodeNoConstructor.
func (e *NoConstructorError) Code() string { return e.err.GetCode() }

// DuplicateBindingError is returned when a capability is registered twice.
type DuplicateBindingError struct {
	Capability reflect.Type

	err *errs.Error
}

func newDuplicateBindingError(capability reflect.Type) *DuplicateBindingError {
	err := errs.NewError(
		CodeDuplicateBinding,
		fmt.Sprintf("capability %s is already bound", typeName(capability)),
		nil,
	).WithContext("capability", typeName(capability)).(*errs.Error)

	return &DuplicateBindingError{Capability: capability, err: err}
}

func (e *DuplicateBindingError) Error() string { return e.err.Error() }

// Unwrap returns the coded error.
func (e *DuplicateBindingError) Unwrap() error { return e.err }

// Code returns CodeDuplicateBinding.
func (e *DuplicateBindingError) Code() string { return e.err.GetCode() }

// CyclicDependencyError is returned when a capability's graph depends on
// itself. Path starts and ends with the same capability.
type CyclicDependencyError struct {
	Path []reflect.Type

	err *errs.Error
}

func newCyclicDependencyError(path []reflect.Type) *CyclicDependencyError {
	names := make([]string, len(path))
	for i, t := range path {
		names[i] = typeName(t)
	}

	msg := "cyclic dependency detected"
	if len(names) > 0 {
		msg = fmt.Sprintf("cyclic dependency detected: %s", strings.Join(names, " -> "))
	}

	err := errs.NewError(CodeCyclicDependency, msg, nil).
		WithContext("cycle", names).(*errs.Error)

	return &CyclicDependencyError{Path: path, err: err}
}

func (e *CyclicDependencyError) Error() string { return e.err.Error() }

// Unwrap returns the coded error.
func (e *CyclicDependencyError) Unwrap() error { return e.err }

// Code returns CodeCyclicDependency.
func (e *CyclicDependencyError) Code() string { return e.err.GetCode() }

// ConstructionError wraps a failure returned (or panicked) by a constructor.
// The cause is reachable through errors.Is and errors.As.
type ConstructionError struct {
	Capability     reflect.Type
	Implementation reflect.Type
	Cause          error

	err *errs.Error
}

func newConstructionError(capability, implementation reflect.Type, cause error) *ConstructionError {
	err := errs.NewError(
		CodeConstruction,
		fmt.Sprintf("constructing %s for %s", typeName(implementation), typeName(capability)),
		cause,
	).WithContext("capability", typeName(capability)).
		WithContext("implementation", typeName(implementation)).(*errs.Error)

	return &ConstructionError{Capability: capability, Implementation: implementation, Cause: cause, err: err}
}

func (e *ConstructionError) Error() string { return e.err.Error() }

// Unwrap returns the coded error, which in turn wraps the cause.
func (e *ConstructionError) Unwrap() error { return e.err }

// Code returns CodeConstruction.
func (e *ConstructionError) Code() string { return e.err.GetCode() }

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// errInvalidBinding reports a registration that cannot be bound at all, such
// as a nil capability or an unknown lifetime.
func errInvalidBinding(capability reflect.Type, reason string) *errs.Error {
	if capability == nil {
		return errs.NewError(CodeInvalidBinding, "invalid binding: "+reason, nil).
			WithContext("reason", reason).(*errs.Error)
	}

	return errs.NewError(
		CodeInvalidBinding,
		fmt.Sprintf("invalid binding for %s: %s", typeName(capability), reason),
		nil,
	).WithContext("capability", typeName(capability)).
		WithContext("reason", reason).(*errs.Error)
}

// errTypeMismatch reports an instance that is not a T.
func errTypeMismatch(want reflect.Type, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("type mismatch: expected %s, got %T", typeName(want), actual),
		nil,
	).WithContext("capability", typeName(want)).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
