package network

// GroupKind distinguishes plain namespaces from primitive propagators.
type GroupKind string

const (
	GroupPlain  GroupKind = "group"
	GroupGadget GroupKind = "gadget"
)

// Port binds a gadget's named input or output to its backing boundary
// contact.
type Port struct {
	Name      string `json:"name"`
	ContactID ID     `json:"contact_id"`
}

// Group is a hierarchical namespace owning contacts, wires, and subgroups.
// ParentID is a non-owning back-reference resolved through the arena; member
// slices preserve creation order so every enumeration is deterministic.
type Group struct {
	ID       ID        `json:"id"`
	Seq      int64     `json:"seq"`
	ParentID ID        `json:"parent_id,omitempty"`
	Name     string    `json:"name"`
	Kind     GroupKind `json:"kind"`

	Contacts  []ID `json:"contacts,omitempty"`
	Wires     []ID `json:"wires,omitempty"`
	Subgroups []ID `json:"subgroups,omitempty"`

	// Gadget-only fields.
	GadgetKind string `json:"gadget_kind,omitempty"`
	Inputs     []Port `json:"inputs,omitempty"`
	Outputs    []Port `json:"outputs,omitempty"`
}

func (g *Group) IsGadget() bool {
	return g.Kind == GroupGadget
}

// InputPort returns the port binding for a named input, if any.
func (g *Group) InputPort(name string) (Port, bool) {
	for _, p := range g.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// OutputContact reports whether the contact backs one of the gadget's
// output ports.
func (g *Group) OutputContact(id ID) bool {
	for _, p := range g.Outputs {
		if p.ContactID == id {
			return true
		}
	}
	return false
}

// InputContact reports whether the contact backs one of the gadget's input
// ports.
func (g *Group) InputContact(id ID) bool {
	for _, p := range g.Inputs {
		if p.ContactID == id {
			return true
		}
	}
	return false
}

func (g *Group) clone() *Group {
	out := *g
	out.Contacts = append([]ID(nil), g.Contacts...)
	out.Wires = append([]ID(nil), g.Wires...)
	out.Subgroups = append([]ID(nil), g.Subgroups...)
	out.Inputs = append([]Port(nil), g.Inputs...)
	out.Outputs = append([]Port(nil), g.Outputs...)
	return &out
}

func removeID(ids []ID, id ID) []ID {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
