package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the three failure kinds. Concrete error types below
// match them with errors.Is so callers never need a type switch.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrEvaluation = errors.New("evaluation anomaly")
)

// FieldIssue is a single violated constraint.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one message per violated field constraint.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError from issues.
func NewValidationError(issues ...FieldIssue) error {
	return &ValidationError{Issues: issues}
}

// NotFoundError reports a missing program, MEB record or similar resource.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// EvaluationAnomaly describes why a single rule degraded to "no match".
// It is logged, never returned from a scoring or benefit pass.
type EvaluationAnomaly struct {
	RuleID string
	Reason string
}

func (e *EvaluationAnomaly) Error() string {
	if e.RuleID == "" {
		return "rule evaluation: " + e.Reason
	}
	return fmt.Sprintf("rule %s evaluation: %s", e.RuleID, e.Reason)
}

func (e *EvaluationAnomaly) Is(target error) bool {
	return target == ErrEvaluation
}

// NewEvaluationAnomaly builds an EvaluationAnomaly with a formatted reason.
func NewEvaluationAnomaly(ruleID, format string, args ...any) error {
	return &EvaluationAnomaly{RuleID: ruleID, Reason: fmt.Sprintf(format, args...)}
}
