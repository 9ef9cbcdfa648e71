// Package models contains the domain models for the application.
package models

import (
	"fmt"
)

// Command names a terraform lifecycle operation.
const (
	CommandInit    = "init"
	CommandPlan    = "plan"
	CommandApply   = "apply"
	CommandDestroy = "destroy"
)

// ResourceChange is the kind of mutation applied to a resource.
// A replacement is represented as ChangeDestroy followed by ChangeCreate.
type ResourceChange int

const (
	ChangeCreate ResourceChange = iota + 1
	ChangeRead
	ChangeUpdate
	ChangeDestroy
)

var changeNames = map[ResourceChange]string{
	ChangeCreate:  "Create",
	ChangeRead:    "Read",
	ChangeUpdate:  "Update",
	ChangeDestroy: "Destroy",
}

// String implements the fmt.Stringer interface.
func (c ResourceChange) String() string {
	if name, ok := changeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ResourceChange(%d)", int(c))
}

// MarshalText encodes the change by name.
func (c ResourceChange) MarshalText() ([]byte, error) {
	name, ok := changeNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown resource change %d", int(c))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a change name.
func (c *ResourceChange) UnmarshalText(text []byte) error {
	for change, name := range changeNames {
		if name == string(text) {
			*c = change
			return nil
		}
	}
	return fmt.Errorf("unknown resource change %q", string(text))
}

// ResourceStatus is the lifecycle position a line reports.
// StatusNone marks raw output that matched no pattern.
type ResourceStatus int

const (
	StatusNone ResourceStatus = iota
	// StatusPlanned appears in a plan diff.
	StatusPlanned
	// StatusStarted marks an action that has begun.
	StatusStarted
	// StatusInProgress is the periodic "Still ..." ping of a long action.
	StatusInProgress
	// StatusDone marks a single resource action that finished.
	StatusDone
	// StatusCompleted marks the whole command finishing; it carries counts.
	StatusCompleted
)

var statusNames = map[ResourceStatus]string{
	StatusPlanned:    "Planned",
	StatusStarted:    "Started",
	StatusInProgress: "InProgress",
	StatusDone:       "Done",
	StatusCompleted:  "Completed",
}

// String implements the fmt.Stringer interface.
func (s ResourceStatus) String() string {
	if s == StatusNone {
		return "None"
	}
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ResourceStatus(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s ResourceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *ResourceStatus) UnmarshalText(text []byte) error {
	if string(text) == "None" || len(text) == 0 {
		*s = StatusNone
		return nil
	}
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown resource status %q", string(text))
}

// SourceStream identifies the output channel a line was read from.
// It encodes as a number: 1 for stdout, 2 for stderr.
type SourceStream uint8

const (
	Stdout SourceStream = 1
	Stderr SourceStream = 2
)

// String implements the fmt.Stringer interface.
func (s SourceStream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("stream(%d)", uint8(s))
	}
}

// TerraformEvent is one classified line of terraform output.
//
// Empty strings and nil counts mean the field does not apply to the line.
// Count fields are only set when Status is StatusCompleted, and a
// completed event never carries a ResourcePath.
type TerraformEvent struct {
	Change       []ResourceChange `json:"change,omitempty"`
	Status       ResourceStatus   `json:"status,omitempty"`
	ResourcePath string           `json:"resource_path,omitempty"`
	IDKey        string           `json:"id_key,omitempty"`
	IDValue      string           `json:"id_value,omitempty"`
	CreateCount  *uint32          `json:"create_count,omitempty"`
	UpdateCount  *uint32          `json:"update_count,omitempty"`
	DeleteCount  *uint32          `json:"delete_count,omitempty"`
	Command      string           `json:"command"`
	Source       string           `json:"source"`
	SourceStream SourceStream     `json:"source_stream"`
}

// HasStatus reports whether the line matched a lifecycle pattern.
func (e TerraformEvent) HasStatus() bool {
	return e.Status != StatusNone
}

// TotalChanges sums the count fields that are present.
func (e TerraformEvent) TotalChanges() uint32 {
	var total uint32
	for _, c := range []*uint32{e.CreateCount, e.UpdateCount, e.DeleteCount} {
		if c != nil {
			total += *c
		}
	}
	return total
}

// Count returns a pointer to n, for populating the count fields.
func Count(n uint32) *uint32 {
	return &n
}
