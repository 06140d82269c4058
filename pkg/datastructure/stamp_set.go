package datastructure

// StampSet is a map-sized membership set with O(1) reset: an id is a member when its stamp
// equals the current epoch.
type StampSet struct {
	stamps []uint32
	epoch  uint32
}

func NewStampSet(capacity int) *StampSet {
	return &StampSet{
		stamps: make([]uint32, capacity),
		epoch:  1, // 0 is "never added"
	}
}

// Reset removes every member.
func (s *StampSet) Reset() {
	s.epoch++
	if s.epoch == 0 {
		clear(s.stamps)
		s.epoch = 1
	}
}

// Add marks id as a member. ids past the capacity are ignored.
func (s *StampSet) Add(id Index) {
	if int(id) >= len(s.stamps) {
		return
	}
	s.stamps[id] = s.epoch
}

func (s *StampSet) Contains(id Index) bool {
	if int(id) >= len(s.stamps) {
		return false
	}
	return s.stamps[id] == s.epoch
}

func (s *StampSet) Capacity() int {
	return len(s.stamps)
}
