// Package errors provides standardized error types and helpers for the RowanText codebase.
//
// All fatal conversion errors are verse-scoped: they identify the dialect and
// the (module, book, chapter, verse) location they occurred at, and they abort
// only that verse's conversion. Nothing in this package terminates processing.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrUnknownConstruct indicates a construct value outside its enumeration
	// (section type, container type, style name, attribute kind).
	ErrUnknownConstruct = errors.New("unknown construct")
	// ErrResidualMarkup indicates dialect markup survived all filter passes.
	ErrResidualMarkup = errors.New("residual markup")
	// ErrBadReference indicates an unparseable verse reference.
	ErrBadReference = errors.New("bad reference")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// Location identifies the verse an error belongs to.
type Location struct {
	Module  string // Source module name (e.g., "KJV")
	Book    string // Book code (e.g., "Gen", "1John")
	Chapter string // Chapter number as text; "0" is front matter
	Verse   string // Verse number as text; "0" is the chapter intro
}

func (l Location) String() string {
	if l.Module != "" {
		return fmt.Sprintf("%s %s %s:%s", l.Module, l.Book, l.Chapter, l.Verse)
	}
	return fmt.Sprintf("%s %s:%s", l.Book, l.Chapter, l.Verse)
}

// UnknownConstructError reports an enumeration value the dialect filter does
// not recognize. Fatal to the verse: silently guessing is unsafe.
type UnknownConstructError struct {
	Dialect   string   // Source dialect (e.g., "OSIS")
	Construct string   // What kind of value (e.g., "section type", "div type")
	Value     string   // The offending value
	Fragment  string   // The matched source fragment
	Loc       Location // Verse the error occurred at
	Err       error    // Underlying error, if any
}

func (e *UnknownConstructError) Error() string {
	return fmt.Sprintf("%s %s: unknown %s %q in %q", e.Dialect, e.Loc, e.Construct, e.Value, e.Fragment)
}

func (e *UnknownConstructError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnknownConstruct
}

// ResidualMarkupError reports angle-bracket content that survived every pass
// of a dialect filter. Fatal to the verse: it signals a grammar gap in the
// filter, not bad data to be patched around at run time.
type ResidualMarkupError struct {
	Dialect  string
	Fragment string // The remaining text containing markup
	Loc      Location
}

func (e *ResidualMarkupError) Error() string {
	return fmt.Sprintf("%s %s: residual markup in %q", e.Dialect, e.Loc, e.Fragment)
}

func (e *ResidualMarkupError) Unwrap() error { return ErrResidualMarkup }

// AttributeResidueError reports attribute text left over after all known
// attribute kinds were decoded from a word-level tag. Fatal to the verse.
type AttributeResidueError struct {
	Dialect string
	Residue string // Undecoded attribute text
	Loc     Location
}

func (e *AttributeResidueError) Error() string {
	return fmt.Sprintf("%s %s: unhandled word attributes %q", e.Dialect, e.Loc, e.Residue)
}

func (e *AttributeResidueError) Unwrap() error { return ErrUnknownConstruct }

// ReferenceError reports an unparseable verse reference.
type ReferenceError struct {
	Input   string
	Message string
	Err     error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("bad reference %q: %s", e.Input, e.Message)
}

func (e *ReferenceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrBadReference
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "YAML", "IMP")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Helper functions for creating common errors

// NewUnknownConstruct creates an UnknownConstructError.
func NewUnknownConstruct(dialect, construct, value, fragment string, loc Location) *UnknownConstructError {
	return &UnknownConstructError{
		Dialect:   dialect,
		Construct: construct,
		Value:     value,
		Fragment:  fragment,
		Loc:       loc,
	}
}

// NewResidualMarkup creates a ResidualMarkupError.
func NewResidualMarkup(dialect, fragment string, loc Location) *ResidualMarkupError {
	return &ResidualMarkupError{Dialect: dialect, Fragment: fragment, Loc: loc}
}

// NewAttributeResidue creates an AttributeResidueError.
func NewAttributeResidue(dialect, residue string, loc Location) *AttributeResidueError {
	return &AttributeResidueError{Dialect: dialect, Residue: residue, Loc: loc}
}

// NewReference creates a ReferenceError.
func NewReference(input, message string) *ReferenceError {
	return &ReferenceError{Input: input, Message: message}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
