// Package models holds the wire-level shapes of the command surface:
// entity views, change events, and command results. Values travel as raw
// JSON in the lattice encoding so clients never depend on core internals.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Contact states visible over the API.
const (
	ContactStateEmpty         = "empty"
	ContactStateHolding       = "holding-value"
	ContactStateContradiction = "holding-contradiction"
)

// ContactView is the externally visible form of a contact.
type ContactView struct {
	ID       string          `json:"id"`
	GroupID  string          `json:"group_id"`
	Name     string          `json:"name"`
	Blend    string          `json:"blend"`
	Boundary bool            `json:"boundary,omitempty"`
	State    string          `json:"state"`
	Value    json.RawMessage `json:"value,omitempty"`

	LastContradiction json.RawMessage `json:"last_contradiction,omitempty"`
}

// WireView is the externally visible form of a wire.
type WireView struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// PortView names a gadget port and its backing contact.
type PortView struct {
	Name      string `json:"name"`
	ContactID string `json:"contact_id"`
}

// GroupView is the externally visible form of a group or gadget. Member
// views are populated by describe-style queries and omitted elsewhere.
type GroupView struct {
	ID         string `json:"id"`
	ParentID   string `json:"parent_id,omitempty"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	GadgetKind string `json:"gadget_kind,omitempty"`

	Inputs  []PortView `json:"inputs,omitempty"`
	Outputs []PortView `json:"outputs,omitempty"`

	Contacts  []ContactView `json:"contacts,omitempty"`
	Wires     []WireView    `json:"wires,omitempty"`
	Subgroups []GroupView   `json:"subgroups,omitempty"`
}

// Change event kinds published after each command settles.
const (
	EventValueChanged        = "value-changed"
	EventContradictionRaised = "contradiction-raised"
	EventContactCreated      = "contact-created"
	EventContactDeleted      = "contact-deleted"
	EventContactMoved        = "contact-moved"
	EventGroupCreated        = "group-created"
	EventGroupDeleted        = "group-deleted"
	EventWireCreated         = "wire-created"
	EventWireDeleted         = "wire-deleted"
	EventWireUpdated         = "wire-updated"
)

var changeEventKinds = map[string]bool{
	EventValueChanged:        true,
	EventContradictionRaised: true,
	EventContactCreated:      true,
	EventContactDeleted:      true,
	EventContactMoved:        true,
	EventGroupCreated:        true,
	EventGroupDeleted:        true,
	EventWireCreated:         true,
	EventWireDeleted:         true,
	EventWireUpdated:         true,
}

// ValidChangeEventKind reports whether a kind belongs to the published
// vocabulary.
func ValidChangeEventKind(kind string) bool {
	return changeEventKinds[strings.TrimSpace(kind)]
}

// ChangeEvent is one typed notification entry.
type ChangeEvent struct {
	Seq       int64           `json:"seq"`
	Kind      string          `json:"kind"`
	EntityID  string          `json:"entity_id"`
	GroupID   string          `json:"group_id,omitempty"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// SendResult reports the outcome of a send command.
type SendResult struct {
	Changed bool          `json:"changed"`
	Steps   int           `json:"steps"`
	Events  []ChangeEvent `json:"events,omitempty"`
}

// RefactorResult reports a refactoring outcome: the affected group (when
// one was created), the fresh-id mapping for copies, and the change list.
type RefactorResult struct {
	Group  *GroupView        `json:"group,omitempty"`
	IDMap  map[string]string `json:"id_map,omitempty"`
	Events []ChangeEvent     `json:"events,omitempty"`
}

// MetricsSnapshot mirrors the in-process counters for the core_metrics
// query.
type MetricsSnapshot struct {
	Commands       int64 `json:"commands"`
	Contradictions int64 `json:"contradictions"`
	Divergences    int64 `json:"divergences"`
	Contacts       int   `json:"contacts"`
	Wires          int   `json:"wires"`
	Groups         int   `json:"groups"`
	EventBacklog   int   `json:"event_backlog"`
}
