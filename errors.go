package icsim

import (
	"fmt"

	"github.com/pkg/errors"
)

// RuntimeFaultKind enumerates the sub-kinds of RuntimeFault.
type RuntimeFaultKind int

// Runtime fault sub-kinds (spec.md §7).
const (
	InvalidInstruction RuntimeFaultKind = iota
	StackOverflow
	StackUnderflow
	UnknownLabel
	DeviceNotFound
	LogicUnreadable
	LogicUnwritable
	InvalidLogicType
	HcfExecuted
)

func (k RuntimeFaultKind) String() string {
	switch k {
	case InvalidInstruction:
		return "InvalidInstruction"
	case StackOverflow:
		return "StackOverflow"
	case StackUnderflow:
		return "StackUnderflow"
	case UnknownLabel:
		return "UnknownLabel"
	case DeviceNotFound:
		return "DeviceNotFound"
	case LogicUnreadable:
		return "LogicUnreadable"
	case LogicUnwritable:
		return "LogicUnwritable"
	case InvalidLogicType:
		return "InvalidLogicType"
	case HcfExecuted:
		return "HcfExecuted"
	default:
		return "RuntimeFault"
	}
}

// LoadError reports a program that failed lexical, syntactic, or semantic
// validation at load time. The offending program is never installed.
type LoadError struct {
	Line    int
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error at line %d: %s", e.Line, e.Message)
}

func newLoadError(line int, format string, args ...interface{}) error {
	return &LoadError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// RuntimeFault reports a fault raised while stepping a chip. It halts the
// chip that raised it; it never halts the simulation manager.
type RuntimeFault struct {
	Kind RuntimeFaultKind
	Line int
	Msg  string
}

func (e *RuntimeFault) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s at line %d", e.Kind, e.Line)
	}
	return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Msg)
}

func newRuntimeFault(kind RuntimeFaultKind, line int, format string, args ...interface{}) *RuntimeFault {
	return &RuntimeFault{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// DataError reports a numeric invariant violated in a mixture operation
// (NaN produced, negative moles/energy). The mixture is clamped back to a
// well-formed state before the error is returned.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string { return "data error: " + e.Msg }

func newDataError(format string, args ...interface{}) error {
	return &DataError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an API lookup by id or name that had no match.
type NotFoundError struct {
	Kind string
	ID   interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Kind, e.ID)
}

func newNotFoundError(kind string, id interface{}) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// DomainError reports misuse of the API: attaching an incompatible port,
// creating a network with a non-positive volume, and similar caller errors.
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string { return "domain error: " + e.Msg }

func newDomainError(format string, args ...interface{}) error {
	return &DomainError{Msg: fmt.Sprintf(format, args...)}
}

// IsRuntimeFault reports whether err is (or wraps) a *RuntimeFault of the
// given kind.
func IsRuntimeFault(err error, kind RuntimeFaultKind) bool {
	var rf *RuntimeFault
	if errors.As(err, &rf) {
		return rf.Kind == kind
	}
	return false
}
