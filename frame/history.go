package frame

import "sync"

// History keeps the most recent frames by sequence number, evicting the oldest beyond its
// capacity.
type History struct {
	mu       sync.Mutex
	capacity int
	order    []uint32
	frames   map[uint32]*Frame
}

// NewHistory returns an empty history holding at most capacity frames.
func NewHistory(capacity int) *History {
	return &History{capacity: max(capacity, 1), frames: map[uint32]*Frame{}}
}

// Add archives f. A frame with the same sequence number is replaced and becomes the newest.
func (h *History) Add(f *Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.frames[f.SequenceNum]; ok {
		for i, seq := range h.order {
			if seq == f.SequenceNum {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	}
	h.frames[f.SequenceNum] = f
	h.order = append(h.order, f.SequenceNum)
	for len(h.order) > h.capacity {
		delete(h.frames, h.order[0])
		h.order = h.order[1:]
	}
}

// Find returns the frame with the given sequence number.
func (h *History) Find(seq uint32) (*Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.frames[seq]
	return f, ok
}

// Latest returns the most recently added frame, or nil.
func (h *History) Latest() *Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.order) == 0 {
		return nil
	}
	return h.frames[h.order[len(h.order)-1]]
}

// Len returns the number of archived frames.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.order)
}

// Clear drops every frame.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.order = nil
	h.frames = map[uint32]*Frame{}
}
