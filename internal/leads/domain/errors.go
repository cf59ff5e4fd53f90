package domain

import (
	"fmt"
	"time"
)

// DuplicateMessage is returned to the site when a repeat is rejected.
const DuplicateMessage = "Заявка с такими контактными данными уже была отправлена недавно"

// FieldValidationError reports the first field that failed a format rule.
type FieldValidationError struct {
	Field   string
	Message string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// MissingContactFieldError reports an empty companion field for the chosen channel.
type MissingContactFieldError struct {
	Method ContactMethod
	Fields []string
}

func (e *MissingContactFieldError) Error() string {
	return fmt.Sprintf("contact method %s requires %v", e.Method, e.Fields)
}

// Message is the user-facing text for the channel.
func (e *MissingContactFieldError) Message() string {
	if ch, ok := ChannelFor(e.Method); ok {
		return ch.MissingMessage
	}
	return "Укажите контактные данные"
}

// DuplicateSubmissionError means the same identity was accepted on the same
// channel inside the window. The caller may retry once the window has passed.
type DuplicateSubmissionError struct {
	Method     ContactMethod
	ExistingID int64
	Window     time.Duration
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("duplicate %s submission within %s (lead %d)", e.Method, e.Window, e.ExistingID)
}

// StorageError wraps a read or write failure of the lead store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("lead store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
