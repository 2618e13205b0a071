package app

import (
	"encoding/json"

	"propnet/go-core/internal/engine"
	"propnet/go-core/internal/lattice"
	"propnet/go-core/internal/network"
	"propnet/go-core/internal/refactor"
	"propnet/go-core/pkg/models"
)

func contactView(contact *network.Contact) models.ContactView {
	view := models.ContactView{
		ID:       string(contact.ID),
		GroupID:  string(contact.GroupID),
		Name:     contact.Name,
		Blend:    string(contact.Blend),
		Boundary: contact.IsBoundary,
		State:    models.ContactStateEmpty,
	}
	if value, held := contact.Read(); held {
		view.Value = mustEncode(value)
		view.State = models.ContactStateHolding
		if value.IsContradiction() {
			view.State = models.ContactStateContradiction
		}
	}
	if contact.LastContradiction != nil {
		view.LastContradiction = mustEncode(*contact.LastContradiction)
	}
	return view
}

func wireView(wire *network.Wire) models.WireView {
	return models.WireView{
		ID:      string(wire.ID),
		GroupID: string(wire.GroupID),
		From:    string(wire.From),
		To:      string(wire.To),
	}
}

func (s *Service) groupView(group *network.Group, withMembers bool) (models.GroupView, error) {
	view := models.GroupView{
		ID:         string(group.ID),
		ParentID:   string(group.ParentID),
		Name:       group.Name,
		Kind:       string(group.Kind),
		GadgetKind: group.GadgetKind,
	}
	for _, port := range group.Inputs {
		view.Inputs = append(view.Inputs, models.PortView{Name: port.Name, ContactID: string(port.ContactID)})
	}
	for _, port := range group.Outputs {
		view.Outputs = append(view.Outputs, models.PortView{Name: port.Name, ContactID: string(port.ContactID)})
	}
	if !withMembers {
		return view, nil
	}
	for _, id := range group.Contacts {
		contact, err := s.net.Contact(id)
		if err != nil {
			return models.GroupView{}, err
		}
		view.Contacts = append(view.Contacts, contactView(contact))
	}
	for _, id := range group.Wires {
		wire, err := s.net.Wire(id)
		if err != nil {
			return models.GroupView{}, err
		}
		view.Wires = append(view.Wires, wireView(wire))
	}
	for _, id := range group.Subgroups {
		sub, err := s.net.Group(id)
		if err != nil {
			return models.GroupView{}, err
		}
		subView, err := s.groupView(sub, false)
		if err != nil {
			return models.GroupView{}, err
		}
		view.Subgroups = append(view.Subgroups, subView)
	}
	return view, nil
}

// propagationEvent maps an engine change onto the published vocabulary.
func propagationEvent(change engine.Change) models.ChangeEvent {
	kind := models.EventValueChanged
	if change.Contradiction {
		kind = models.EventContradictionRaised
	}
	return models.ChangeEvent{
		Kind:     kind,
		EntityID: string(change.ContactID),
		Value:    mustEncode(change.Value),
	}
}

func refactorEvent(change refactor.Change) models.ChangeEvent {
	return models.ChangeEvent{
		Kind:     string(change.Kind),
		EntityID: string(change.EntityID),
		GroupID:  string(change.GroupID),
		From:     string(change.From),
		To:       string(change.To),
	}
}

// mustEncode marshals a value already validated by the lattice; a failure
// here is a programming error, not an input error.
func mustEncode(v lattice.Value) json.RawMessage {
	raw, err := lattice.Encode(v)
	if err != nil {
		panic(err)
	}
	return raw
}
