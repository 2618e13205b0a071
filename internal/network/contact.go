package network

import "propnet/go-core/internal/lattice"

// Contact is an atomic mergeable cell. It is exclusively owned by one group
// for its whole lifetime; GroupID changes only through refactoring moves.
type Contact struct {
	ID      ID     `json:"id"`
	Seq     int64  `json:"seq"`
	GroupID ID     `json:"group_id"`
	Name    string `json:"name"`

	Blend    lattice.BlendMode `json:"blend"`
	HasValue bool              `json:"has_value"`
	Value    lattice.Value     `json:"value,omitempty"`

	IsBoundary        bool           `json:"is_boundary"`
	LastContradiction *lattice.Value `json:"last_contradiction,omitempty"`
}

// Receive blends an incoming value into the contact. The changed result is
// computed under structural equality: re-delivering an already-held value is
// a no-op and must not wake dependents, or accept-last cycles would never
// quiesce on stable values.
func (c *Contact) Receive(incoming lattice.Value) (changed bool) {
	result := lattice.Merge(c.Value, c.HasValue, incoming, c.Blend)
	changed = !c.HasValue || !lattice.Equal(c.Value, result)
	c.Value = result
	c.HasValue = true
	if result.IsContradiction() {
		recorded := result.Clone()
		c.LastContradiction = &recorded
	}
	return changed
}

// Read returns the current content; ok is false while the contact is empty.
func (c *Contact) Read() (lattice.Value, bool) {
	if !c.HasValue {
		return lattice.Value{}, false
	}
	return c.Value, true
}

func (c *Contact) clone() *Contact {
	out := *c
	out.Value = c.Value.Clone()
	if c.LastContradiction != nil {
		lc := c.LastContradiction.Clone()
		out.LastContradiction = &lc
	}
	return &out
}
