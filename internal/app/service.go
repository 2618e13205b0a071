package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"propnet/go-core/internal/engine"
	"propnet/go-core/internal/lattice"
	"propnet/go-core/internal/network"
	"propnet/go-core/internal/observability"
	"propnet/go-core/internal/refactor"
	"propnet/go-core/internal/storage"
	"propnet/go-core/pkg/models"
)

// ErrNoStore rejects snapshot commands when persistence is not configured.
var ErrNoStore = errors.New("no snapshot store configured")

// Options assembles a Service. Zero fields fall back to sane defaults; a
// nil Net starts from an empty root group.
type Options struct {
	Net      *network.Network
	IDs      network.IDGenerator
	MaxSteps int
	Backlog  int
	Store    *storage.SnapshotStore
	Logger   *slog.Logger
}

// Service owns the network and serializes every external command under one
// lock: a command runs to full quiescence before the next is admitted,
// which is the concurrency model the core promises.
type Service struct {
	mu     sync.Mutex
	net    *network.Network
	engine *engine.Engine
	hub    *NotificationHub
	store  *storage.SnapshotStore
	logger *slog.Logger

	commands       int64
	contradictions int64
	divergences    int64
}

var _ CoreAPI = (*Service)(nil)

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	net := opts.Net
	if net == nil {
		net = network.New(opts.IDs)
	}
	return &Service{
		net:    net,
		engine: engine.New(opts.MaxSteps, logger),
		hub:    NewNotificationHub(opts.Backlog),
		store:  opts.Store,
		logger: logger,
	}
}

// Hub exposes the notification hub for in-process subscribers.
func (s *Service) Hub() *NotificationHub {
	return s.hub
}

func (s *Service) track(method string, started time.Time, err error) {
	s.commands++
	observability.RecordCommand(method, err == nil, time.Since(started))
	if err != nil {
		s.logger.Warn("command failed", "method", method, "error", err)
	}
}

func (s *Service) publish(events []models.ChangeEvent) []models.ChangeEvent {
	out := make([]models.ChangeEvent, 0, len(events))
	for _, event := range events {
		out = append(out, s.hub.Publish(event))
	}
	return out
}

// SpawnContact creates a contact under the addressed group.
func (s *Service) SpawnContact(parentPath, name, blend string, value json.RawMessage) (_ models.ContactView, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("net_spawn_contact", started, err) }()

	parent, err := s.resolveGroup(parentPath)
	if err != nil {
		return models.ContactView{}, err
	}
	mode, err := lattice.ParseBlendMode(blend)
	if err != nil {
		return models.ContactView{}, err
	}
	var initial *lattice.Value
	if len(value) > 0 {
		decoded, err := lattice.Decode(value)
		if err != nil {
			return models.ContactView{}, err
		}
		initial = &decoded
	}

	contact, err := s.net.SpawnContact(parent.ID, strings.TrimSpace(name), mode, initial)
	if err != nil {
		return models.ContactView{}, err
	}
	s.publish([]models.ChangeEvent{{
		Kind:     models.EventContactCreated,
		EntityID: string(contact.ID),
		GroupID:  string(parent.ID),
	}})
	return contactView(contact), nil
}

// SpawnGroup creates an empty subgroup under the addressed group.
func (s *Service) SpawnGroup(parentPath, name string) (_ models.GroupView, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("net_spawn_group", started, err) }()

	parent, err := s.resolveGroup(parentPath)
	if err != nil {
		return models.GroupView{}, err
	}
	group, err := s.net.SpawnGroup(parent.ID, strings.TrimSpace(name))
	if err != nil {
		return models.GroupView{}, err
	}
	s.publish([]models.ChangeEvent{{
		Kind:     models.EventGroupCreated,
		EntityID: string(group.ID),
		GroupID:  string(parent.ID),
	}})
	return s.groupView(group, false)
}

// SpawnGadget instantiates a builtin gadget kind under the addressed group.
func (s *Service) SpawnGadget(parentPath, name, kind string) (_ models.GroupView, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("net_spawn_gadget", started, err) }()

	parent, err := s.resolveGroup(parentPath)
	if err != nil {
		return models.GroupView{}, err
	}
	gadget, err := s.net.SpawnGadget(parent.ID, strings.TrimSpace(name), strings.TrimSpace(kind))
	if err != nil {
		return models.GroupView{}, err
	}
	s.publish([]models.ChangeEvent{{
		Kind:     models.EventGroupCreated,
		EntityID: string(gadget.ID),
		GroupID:  string(parent.ID),
	}})
	return s.groupView(gadget, false)
}

// Send delivers a value to a contact and runs propagation to fixpoint. The
// command is atomic: on divergence the network reverts to its pre-command
// state and the error surfaces, with nothing published.
func (s *Service) Send(contactPath string, value json.RawMessage) (_ models.SendResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("net_send", started, err) }()

	contact, err := s.resolveContact(contactPath)
	if err != nil {
		return models.SendResult{}, err
	}
	if err := s.guardGadgetOutput(contact); err != nil {
		return models.SendResult{}, err
	}
	decoded, err := lattice.Decode(value)
	if err != nil {
		return models.SendResult{}, err
	}

	before := s.net.Clone()
	if changed := contact.Receive(decoded); !changed {
		// Idempotent re-send: no propagation, no events.
		return models.SendResult{Changed: false}, nil
	}

	first := engine.Change{
		ContactID:     contact.ID,
		Value:         contact.Value.Clone(),
		Contradiction: contact.Value.IsContradiction(),
	}
	changes, steps, err := s.engine.Run(s.net, engine.Seeds{Contacts: []network.ID{contact.ID}})
	if err != nil {
		s.net.Restore(before)
		s.divergences++
		observability.RecordDivergence()
		return models.SendResult{}, err
	}

	events := s.settle(append([]engine.Change{first}, changes...), steps)
	return models.SendResult{Changed: true, Steps: steps, Events: events}, nil
}

// Wire connects two contacts and immediately propagates through the new
// link, atomically: a divergence rolls the wire itself back too.
func (s *Service) Wire(fromPath, toPath string) (_ models.WireView, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("net_wire", started, err) }()

	from, err := s.resolveContact(fromPath)
	if err != nil {
		return models.WireView{}, err
	}
	to, err := s.resolveContact(toPath)
	if err != nil {
		return models.WireView{}, err
	}

	before := s.net.Clone()
	wire, err := s.net.SpawnWire(from.ID, to.ID)
	if err != nil {
		return models.WireView{}, err
	}
	changes, steps, err := s.engine.Run(s.net, engine.Seeds{Wires: []network.ID{wire.ID}})
	if err != nil {
		s.net.Restore(before)
		s.divergences++
		observability.RecordDivergence()
		return models.WireView{}, err
	}

	s.publish([]models.ChangeEvent{{
		Kind:     models.EventWireCreated,
		EntityID: string(wire.ID),
		GroupID:  string(wire.GroupID),
		From:     string(wire.From),
		To:       string(wire.To),
	}})
	s.settle(changes, steps)
	return wireView(wire), nil
}

// Unwire removes a wire by id.
func (s *Service) Unwire(wireID string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("net_unwire", started, err) }()

	wire, err := s.net.Wire(network.ID(wireID))
	if err != nil {
		return err
	}
	view := wireView(wire)
	if err := s.net.DeleteWire(wire.ID); err != nil {
		return err
	}
	s.publish([]models.ChangeEvent{{
		Kind:     models.EventWireDeleted,
		EntityID: view.ID,
		GroupID:  view.GroupID,
		From:     view.From,
		To:       view.To,
	}})
	return nil
}

// Delete removes a contact, group, or gadget by path, recursively, and
// reports everything that disappeared.
func (s *Service) Delete(path string) (_ []models.ChangeEvent, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("net_delete", started, err) }()

	before := s.net.Clone()

	if contact, cErr := s.resolveContact(path); cErr == nil {
		if err := s.net.DeleteContact(contact.ID); err != nil {
			return nil, err
		}
		return s.publish(s.deletionEvents(before)), nil
	}
	group, err := s.resolveGroup(path)
	if err != nil {
		return nil, err
	}
	if err := s.net.DeleteGroup(group.ID); err != nil {
		return nil, err
	}
	return s.publish(s.deletionEvents(before)), nil
}

// deletionEvents diffs the arena around a delete, adding the contact
// deletions the refactoring vocabulary does not track.
func (s *Service) deletionEvents(before *network.Network) []models.ChangeEvent {
	var events []models.ChangeEvent
	for _, change := range refactor.Diff(before, s.net) {
		events = append(events, refactorEvent(change))
	}
	after := make(map[network.ID]bool)
	for _, contact := range s.net.Contacts() {
		after[contact.ID] = true
	}
	for _, contact := range before.Contacts() {
		if !after[contact.ID] {
			events = append(events, models.ChangeEvent{
				Kind:     models.EventContactDeleted,
				EntityID: string(contact.ID),
				GroupID:  string(contact.GroupID),
			})
		}
	}
	return events
}

// Read returns the contact's current state.
func (s *Service) Read(contactPath string) (models.ContactView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.resolveContact(contactPath)
	if err != nil {
		return models.ContactView{}, err
	}
	return contactView(contact), nil
}

// Describe returns a group with its direct members.
func (s *Service) Describe(groupPath string) (models.GroupView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, err := s.resolveGroup(groupPath)
	if err != nil {
		return models.GroupView{}, err
	}
	return s.groupView(group, true)
}

// Extract moves the named contacts into a new subgroup, re-routing external
// wires through fresh boundary contacts.
func (s *Service) Extract(parentPath string, contacts []string, groupName string) (_ models.RefactorResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("refactor_extract", started, err) }()

	parent, ids, err := s.resolveSelection(parentPath, contacts)
	if err != nil {
		return models.RefactorResult{}, err
	}
	group, changes, err := refactor.Extract(s.net, parent.ID, ids, strings.TrimSpace(groupName))
	if err != nil {
		return models.RefactorResult{}, err
	}
	view, err := s.groupView(group, false)
	if err != nil {
		return models.RefactorResult{}, err
	}
	return models.RefactorResult{
		Group:  &view,
		Events: s.publishRefactor(changes),
	}, nil
}

// Inline splices a subgroup's members into its parent, dissolving its
// boundary.
func (s *Service) Inline(parentPath, groupName string) (_ models.RefactorResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("refactor_inline", started, err) }()

	parent, err := s.resolveGroup(parentPath)
	if err != nil {
		return models.RefactorResult{}, err
	}
	group, err := s.childGroup(parent, strings.TrimSpace(groupName))
	if err != nil {
		return models.RefactorResult{}, err
	}
	changes, err := refactor.Inline(s.net, parent.ID, group.ID)
	if err != nil {
		return models.RefactorResult{}, err
	}
	return models.RefactorResult{Events: s.publishRefactor(changes)}, nil
}

// CopyContacts duplicates the named contacts, optionally with the wires
// between them.
func (s *Service) CopyContacts(parentPath string, contacts []string, withWires bool) (_ models.RefactorResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("refactor_copy_contacts", started, err) }()

	parent, ids, err := s.resolveSelection(parentPath, contacts)
	if err != nil {
		return models.RefactorResult{}, err
	}
	idMap, changes, err := refactor.CopyContacts(s.net, parent.ID, ids, withWires)
	if err != nil {
		return models.RefactorResult{}, err
	}
	mapped := make(map[string]string, len(idMap))
	for oldID, newID := range idMap {
		mapped[string(oldID)] = string(newID)
	}
	return models.RefactorResult{
		IDMap:  mapped,
		Events: s.publishRefactor(changes),
	}, nil
}

// CopyGroup duplicates a whole subgroup subtree next to the original.
func (s *Service) CopyGroup(parentPath, groupName string) (_ models.RefactorResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("refactor_copy_group", started, err) }()

	parent, err := s.resolveGroup(parentPath)
	if err != nil {
		return models.RefactorResult{}, err
	}
	group, err := s.childGroup(parent, strings.TrimSpace(groupName))
	if err != nil {
		return models.RefactorResult{}, err
	}
	copied, changes, err := refactor.CopyGroup(s.net, parent.ID, group.ID)
	if err != nil {
		return models.RefactorResult{}, err
	}
	view, err := s.groupView(copied, false)
	if err != nil {
		return models.RefactorResult{}, err
	}
	return models.RefactorResult{
		Group:  &view,
		Events: s.publishRefactor(changes),
	}, nil
}

// PollEvents replays the notification backlog after fromSeq.
func (s *Service) PollEvents(fromSeq int64, max int) []models.ChangeEvent {
	return s.hub.Since(fromSeq, max)
}

// SaveSnapshot persists the current network.
func (s *Service) SaveSnapshot() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("snapshot_save", started, err) }()

	if s.store == nil {
		return ErrNoStore
	}
	err = s.store.Save(s.net.Snapshot())
	observability.RecordSnapshotOp("save", err == nil)
	return err
}

// LoadSnapshot replaces the live network with the persisted one.
func (s *Service) LoadSnapshot() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := time.Now()
	defer func() { s.track("snapshot_load", started, err) }()

	if s.store == nil {
		return ErrNoStore
	}
	snap, err := s.store.Load()
	if err != nil {
		observability.RecordSnapshotOp("load", false)
		return err
	}
	net, err := network.FromSnapshot(snap, nil)
	if err != nil {
		observability.RecordSnapshotOp("load", false)
		return fmt.Errorf("snapshot rejected: %w", err)
	}
	s.net = net
	observability.RecordSnapshotOp("load", true)
	return nil
}

// Metrics reports in-process counters and arena sizes.
func (s *Service) Metrics() models.MetricsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.MetricsSnapshot{
		Commands:       s.commands,
		Contradictions: s.contradictions,
		Divergences:    s.divergences,
		Contacts:       len(s.net.Contacts()),
		Wires:          len(s.net.Wires()),
		Groups:         len(s.net.Groups()),
		EventBacklog:   s.hub.BacklogSize(),
	}
}

// settle publishes propagation changes and records engine metrics.
func (s *Service) settle(changes []engine.Change, steps int) []models.ChangeEvent {
	contradictions := 0
	events := make([]models.ChangeEvent, 0, len(changes))
	for _, change := range changes {
		if change.Contradiction {
			contradictions++
		}
		events = append(events, propagationEvent(change))
	}
	s.contradictions += int64(contradictions)
	observability.RecordPropagation(steps, contradictions)
	return s.publish(events)
}

func (s *Service) publishRefactor(changes []refactor.Change) []models.ChangeEvent {
	events := make([]models.ChangeEvent, 0, len(changes))
	for _, change := range changes {
		events = append(events, refactorEvent(change))
	}
	return s.publish(events)
}

// guardGadgetOutput rejects external writes to gadget output ports; only
// the gadget body writes those.
func (s *Service) guardGadgetOutput(contact *network.Contact) error {
	owner, err := s.net.Group(contact.GroupID)
	if err != nil {
		return err
	}
	if owner.IsGadget() && owner.OutputContact(contact.ID) {
		return fmt.Errorf("contact %s: %w", contact.ID, network.ErrGadgetOutput)
	}
	return nil
}

// resolveSelection resolves contact names relative to a parent group.
func (s *Service) resolveSelection(parentPath string, names []string) (*network.Group, []network.ID, error) {
	parent, err := s.resolveGroup(parentPath)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]network.ID, 0, len(names))
	for _, name := range names {
		contact, err := s.childContact(parent, strings.TrimSpace(name))
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, contact.ID)
	}
	return parent, ids, nil
}
