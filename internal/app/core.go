package app

import (
	"encoding/json"

	"propnet/go-core/pkg/models"
)

// CoreAPI is the full command surface the transport adapters program
// against. Every call executes atomically: the command either settles to a
// fixpoint and publishes its events, or leaves the network untouched.
type CoreAPI interface {
	SpawnContact(parentPath, name, blend string, value json.RawMessage) (models.ContactView, error)
	SpawnGroup(parentPath, name string) (models.GroupView, error)
	SpawnGadget(parentPath, name, kind string) (models.GroupView, error)

	Send(contactPath string, value json.RawMessage) (models.SendResult, error)
	Wire(fromPath, toPath string) (models.WireView, error)
	Unwire(wireID string) error
	Delete(path string) ([]models.ChangeEvent, error)

	Read(contactPath string) (models.ContactView, error)
	Describe(groupPath string) (models.GroupView, error)

	Extract(parentPath string, contacts []string, groupName string) (models.RefactorResult, error)
	Inline(parentPath, groupName string) (models.RefactorResult, error)
	CopyContacts(parentPath string, contacts []string, withWires bool) (models.RefactorResult, error)
	CopyGroup(parentPath, groupName string) (models.RefactorResult, error)

	PollEvents(fromSeq int64, max int) []models.ChangeEvent
	SaveSnapshot() error
	LoadSnapshot() error
	Metrics() models.MetricsSnapshot
}
