package app

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"propnet/go-core/internal/network"
)

// Paths address entities by name from the root group, segments separated by
// slashes: "temps", "adder/x", "building/floor2/thermostat".
const pathSeparator = "/"

// maxSuggestionDistance bounds how far a "did you mean" candidate may be
// from the unknown name.
const maxSuggestionDistance = 3

func splitPath(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), pathSeparator)
	if path == "" {
		return nil
	}
	return strings.Split(path, pathSeparator)
}

// resolveGroup walks group segments from the root. An empty path is the
// root itself.
func (s *Service) resolveGroup(path string) (*network.Group, error) {
	group, err := s.net.Group(s.net.RootID)
	if err != nil {
		return nil, err
	}
	for _, segment := range splitPath(path) {
		next, err := s.childGroup(group, segment)
		if err != nil {
			return nil, err
		}
		group = next
	}
	return group, nil
}

// resolveContact walks group segments and resolves the final segment as a
// contact, falling back through gadget port names since ports are plain
// boundary contacts.
func (s *Service) resolveContact(path string) (*network.Contact, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, &network.ValidationError{Msg: "contact path must not be empty"}
	}
	group, err := s.resolveGroup(strings.Join(segments[:len(segments)-1], pathSeparator))
	if err != nil {
		return nil, err
	}
	return s.childContact(group, segments[len(segments)-1])
}

func (s *Service) childGroup(parent *network.Group, name string) (*network.Group, error) {
	var siblings []string
	for _, id := range parent.Subgroups {
		sub, err := s.net.Group(id)
		if err != nil {
			return nil, err
		}
		if sub.Name == name {
			return sub, nil
		}
		siblings = append(siblings, sub.Name)
	}
	return nil, notFoundError("group", name, parent.Name, siblings)
}

func (s *Service) childContact(parent *network.Group, name string) (*network.Contact, error) {
	var siblings []string
	for _, id := range parent.Contacts {
		contact, err := s.net.Contact(id)
		if err != nil {
			return nil, err
		}
		if contact.Name == name {
			return contact, nil
		}
		siblings = append(siblings, contact.Name)
	}
	for _, id := range parent.Subgroups {
		sub, err := s.net.Group(id)
		if err != nil {
			return nil, err
		}
		siblings = append(siblings, sub.Name)
	}
	return nil, notFoundError("contact", name, parent.Name, siblings)
}

// notFoundError wraps network.ErrNotFound with a nearest-name suggestion
// when one is close enough to be plausible.
func notFoundError(kind, name, groupName string, candidates []string) error {
	base := fmt.Errorf("%s %q in group %q: %w", kind, name, groupName, network.ErrNotFound)
	if suggestion, ok := closestName(name, candidates); ok {
		return fmt.Errorf("%w (did you mean %q?)", base, suggestion)
	}
	return base
}

func closestName(name string, candidates []string) (string, bool) {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range candidates {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}
	return best, best != ""
}
