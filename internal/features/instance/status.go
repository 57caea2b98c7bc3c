package instance

import "fmt"

// InstanceStatus is the lifecycle state of a template instance
type InstanceStatus string

const (
	StatusDraft      InstanceStatus = "DRAFT"
	StatusProcessing InstanceStatus = "PROCESSING"
	StatusCompleted  InstanceStatus = "COMPLETED"
	StatusExported   InstanceStatus = "EXPORTED"
	StatusError      InstanceStatus = "ERROR"
)

// transitions is the full set of legal status moves; everything else is rejected
var transitions = map[InstanceStatus]map[InstanceStatus]bool{
	StatusDraft:      {StatusProcessing: true},
	StatusProcessing: {StatusCompleted: true, StatusError: true},
	StatusCompleted:  {StatusExported: true},
	StatusError:      {StatusProcessing: true},
	StatusExported:   {},
}

// CanTransitionTo reports whether moving to target is legal
func (s InstanceStatus) CanTransitionTo(target InstanceStatus) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	return allowed[target]
}

// IsEditable reports whether rows may be hand-edited or a match run started
func (s InstanceStatus) IsEditable() bool {
	return s == StatusDraft || s == StatusError
}

// IsDeletable reports whether the instance itself may be deleted
func (s InstanceStatus) IsDeletable() bool {
	return s == StatusDraft
}

// ValidateTransition returns a descriptive error for an illegal move
func ValidateTransition(from, to InstanceStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("illegal status transition %s -> %s", from, to)
	}
	return nil
}
