package ir

import (
	"fmt"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// newValidationError creates a new ValidationError.
func newValidationError(path, message string) error {
	return &ValidationError{Path: path, Message: message}
}

// ValidateDocument checks the structural invariants of a document and returns
// all violations: utterance ids must be present and unique, metadata kinds
// must be valid.
func ValidateDocument(d *Document) []error {
	var errs []error

	if d.File == nil {
		errs = append(errs, newValidationError("document", "source file is required"))
	}

	errs = append(errs, ValidateMetadata("document.metadata", d.Metadata)...)

	seen := make(map[string]int)
	for i, u := range d.Utterances {
		uttPath := fmt.Sprintf("document.utterances[%d]", i)
		if u == nil {
			errs = append(errs, newValidationError(uttPath, "utterance is nil"))
			continue
		}
		if u.ID == "" {
			errs = append(errs, newValidationError(uttPath, "ID is required"))
		} else if first, dup := seen[u.ID]; dup {
			errs = append(errs, newValidationError(uttPath,
				fmt.Sprintf("duplicate ID %q (first used at index %d)", u.ID, first)))
		} else {
			seen[u.ID] = i
		}
		errs = append(errs, ValidateMetadata(uttPath+".metadata", u.Metadata)...)
	}

	return errs
}

// ValidateMetadata checks that every key is non-empty and every kind is valid.
func ValidateMetadata(path string, m Metadata) []error {
	var errs []error
	for _, key := range m.Keys() {
		if key == "" {
			errs = append(errs, newValidationError(path, "empty metadata key"))
			continue
		}
		if !m[key].Kind.IsValid() {
			errs = append(errs, newValidationError(path+"."+key,
				fmt.Sprintf("invalid kind: %q", m[key].Kind)))
		}
	}
	return errs
}
