package wfc

// Stack holds wave snapshots taken before each collapse. With a positive
// limit the oldest snapshot is dropped to make room for a new one.
type Stack struct {
	snapshots []*Wave
	limit     int
	peak      int
	dropped   int
}

func NewStack(limit int) *Stack {
	return &Stack{
		snapshots: make([]*Wave, 0),
		limit:     limit,
	}
}

// Push stores an independent copy of w.
func (s *Stack) Push(w *Wave) {
	if s.limit > 0 && len(s.snapshots) >= s.limit {
		s.snapshots[0] = nil
		s.snapshots = s.snapshots[1:]
		s.dropped++
	}
	s.snapshots = append(s.snapshots, w.Clone())
	if len(s.snapshots) > s.peak {
		s.peak = len(s.snapshots)
	}
}

// Pop returns the most recent snapshot, or nil when the stack is empty.
func (s *Stack) Pop() *Wave {
	if len(s.snapshots) == 0 {
		return nil
	}
	last := len(s.snapshots) - 1
	w := s.snapshots[last]
	s.snapshots[last] = nil
	s.snapshots = s.snapshots[:last]
	return w
}

func (s *Stack) Len() int {
	return len(s.snapshots)
}

// Peak is the greatest depth the stack reached.
func (s *Stack) Peak() int {
	return s.peak
}

// Dropped counts snapshots discarded because of the depth limit.
func (s *Stack) Dropped() int {
	return s.dropped
}

// Clear releases every snapshot.
func (s *Stack) Clear() {
	for i := range s.snapshots {
		s.snapshots[i] = nil
	}
	s.snapshots = s.snapshots[:0]
}
