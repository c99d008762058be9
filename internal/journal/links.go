package journal

import (
	"fmt"

	"jrnl/internal/item"
)

// Link records the unordered pair {a, b}. Linking a pair twice, in either
// order, is a no-op.
func (s *Service) Link(a, b int64) error {
	if a == b {
		return fmt.Errorf("%w: cannot link item %d to itself", item.ErrValidation, a)
	}
	if _, err := s.Get(a); err != nil {
		return err
	}
	if _, err := s.Get(b); err != nil {
		return err
	}
	return s.store.InsertLink(item.NewLink(a, b))
}

// Unlink removes the pair if present; a missing pair is not an error.
func (s *Service) Unlink(a, b int64) error {
	if a == b {
		return fmt.Errorf("%w: cannot unlink item %d from itself", item.ErrValidation, a)
	}
	return s.store.DeleteLink(item.NewLink(a, b))
}

// LinkedItems returns every item linked to id, in either direction.
func (s *Service) LinkedItems(id int64) ([]item.Item, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	links, err := s.store.LinksFor(id)
	if err != nil {
		return nil, err
	}
	var out []item.Item
	for _, l := range links {
		other, err := s.Get(l.Other(id))
		if err != nil {
			return nil, err
		}
		out = append(out, other)
	}
	return out, nil
}
