package content

import "encoding/json"

// ServedSet records item ids already shown to a learner on a practice
// day. It is not safe for concurrent use.
type ServedSet struct {
	ids   map[string]struct{}
	order []string
}

// NewServedSet creates a set holding ids.
func NewServedSet(ids ...string) *ServedSet {
	s := &ServedSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *ServedSet) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Add inserts id and reports whether it was new.
func (s *ServedSet) Add(id string) bool {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *ServedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns the ids in insertion order.
func (s *ServedSet) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

func (s *ServedSet) MarshalJSON() ([]byte, error) {
	if s == nil || s.order == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.order)
}

func (s *ServedSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = *NewServedSet(ids...)
	return nil
}
