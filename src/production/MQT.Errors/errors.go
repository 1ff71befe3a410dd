// Package errors defines the failure taxonomy of the telemetry pipeline.
//
// Every per-message failure is one of four kinds. The ingestor handles all of
// them the same way (log, count, drop the message); the kind only decides the
// log level and the metric label.
package errors

import (
	"errors"
	"fmt"
)

// Kind sentinels, matched with errors.Is
var (
	// ErrDecode means the inbound payload was not a well-formed reading
	ErrDecode = errors.New("decode failed")
	// ErrNotFound means a metadata lookup matched nothing
	ErrNotFound = errors.New("not found")
	// ErrStore means the document store could not answer a lookup
	ErrStore = errors.New("store unavailable")
	// ErrPublish means the outbound channel or exchange rejected the record
	ErrPublish = errors.New("publish failed")
)

// Class tells routine drops apart from infrastructure failures
type Class int

const (
	// ClassRoutine covers expected drops such as unknown devices
	ClassRoutine Class = iota
	// ClassFailure covers malformed input and infrastructure errors
	ClassFailure
)

// String returns the string representation of Class
func (c Class) String() string {
	switch c {
	case ClassRoutine:
		return "routine"
	case ClassFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// PipelineError wraps a cause with its kind and the entity it concerns
type PipelineError struct {
	Kind   error
	Entity string
	Key    string
	Err    error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	msg := e.Kind.Error()
	if e.Entity != "" {
		msg = fmt.Sprintf("%s %s", e.Entity, msg)
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Key)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause
func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Decode wraps a payload decoding failure
func Decode(err error) error {
	return &PipelineError{Kind: ErrDecode, Err: err}
}

// NotFound reports a lookup miss for entity identified by key
func NotFound(entity, key string) error {
	return &PipelineError{Kind: ErrNotFound, Entity: entity, Key: key}
}

// Store wraps a document store failure while looking up entity
func Store(entity, key string, err error) error {
	return &PipelineError{Kind: ErrStore, Entity: entity, Key: key, Err: err}
}

// Publish wraps an outbound failure during op (channel, declare, marshal, publish)
func Publish(op string, err error) error {
	return &PipelineError{Kind: ErrPublish, Entity: op, Err: err}
}

// IsNotFound reports whether err is a lookup miss
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStore reports whether err is a document store failure
func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}

// Classify returns the class for a pipeline error
func Classify(err error) Class {
	if err == nil || IsNotFound(err) {
		return ClassRoutine
	}
	return ClassFailure
}

// EntityOf returns the entity named by a PipelineError in err's chain, or ""
func EntityOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Entity
	}
	return ""
}
