package stream

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/Neumenon/jayson/jayson"
)

// Cursor tracks per-SID state for stream processing: sequence numbers,
// the latest decoded value and its digest, and acknowledgements.
// A Cursor is safe for concurrent use. The *SIDState values it hands out are
// live; read them only while no other goroutine feeds the same SID.
type Cursor struct {
	mu sync.RWMutex

	// Per-SID state
	cursors map[uint64]*SIDState
}

// SIDState holds state for a single stream ID.
type SIDState struct {
	SID       uint64
	LastSeq   uint64        // Last sequence number seen
	LastAcked uint64        // Last sequence number acknowledged
	Digest    uint64        // jayson.Digest of State
	HasState  bool          // Whether Digest is valid
	State     *jayson.Value // Latest decoded value (optional)
	Final     bool          // Whether stream has ended
}

// NewCursor creates a new cursor.
func NewCursor() *Cursor {
	return &Cursor{
		cursors: make(map[uint64]*SIDState),
	}
}

// Get returns the state for a SID, creating it if needed.
func (c *Cursor) Get(sid uint64) *SIDState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(sid)
}

func (c *Cursor) getLocked(sid uint64) *SIDState {
	state, ok := c.cursors[sid]
	if !ok {
		state = &SIDState{SID: sid}
		c.cursors[sid] = state
	}
	return state
}

// GetReadOnly returns the state for a SID without creating it.
func (c *Cursor) GetReadOnly(sid uint64) *SIDState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cursors[sid]
}

// Delete removes state for a SID.
func (c *Cursor) Delete(sid uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cursors, sid)
}

// AllSIDs returns all tracked SIDs in ascending order.
func (c *Cursor) AllSIDs() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sids := make([]uint64, 0, len(c.cursors))
	for sid := range c.cursors {
		sids = append(sids, sid)
	}
	sort.Slice(sids, func(i, j int) bool { return sids[i] < sids[j] })
	return sids
}

// SeqError reports a frame whose sequence number is a duplicate or leaves
// a gap.
type SeqError struct {
	SID      uint64
	Expected uint64
	Got      uint64
}

func (e *SeqError) Error() string {
	if e.Got < e.Expected {
		return fmt.Sprintf("stream: sid %d: sequence not monotonic: got %d, expected %d", e.SID, e.Got, e.Expected)
	}
	return fmt.Sprintf("stream: sid %d: sequence gap: expected %d, got %d", e.SID, e.Expected, e.Got)
}

// ProcessFrame checks a frame against the cursor and records its sequence
// number. It fails when:
//   - the sequence number is a duplicate or leaves a gap
//   - the frame has a base digest that differs from the stored state
func (c *Cursor) ProcessFrame(frame *Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.getLocked(frame.SID)
	if err := checkLocked(state, frame); err != nil {
		return err
	}
	commitLocked(state, frame)
	return nil
}

func checkLocked(state *SIDState, frame *Frame) error {
	if frame.Seq != 0 && frame.Seq <= state.LastSeq {
		return &SeqError{SID: frame.SID, Expected: state.LastSeq + 1, Got: frame.Seq}
	}
	if state.LastSeq > 0 && frame.Seq != state.LastSeq+1 {
		return &SeqError{SID: frame.SID, Expected: state.LastSeq + 1, Got: frame.Seq}
	}

	if frame.Base != nil {
		if !state.HasState {
			return errors.Errorf("stream: cannot verify base: no state for sid %d", frame.SID)
		}
		if state.Digest != *frame.Base {
			return &BaseMismatchError{Expected: *frame.Base, Got: state.Digest}
		}
	}
	return nil
}

func commitLocked(state *SIDState, frame *Frame) {
	state.LastSeq = frame.Seq
	if frame.Final {
		state.Final = true
	}
}

// Apply processes a text or binary frame and makes its decoded value the
// stream's state. Frames of other kinds are only sequence-checked and
// return a nil value. A frame whose payload fails to decode leaves the
// cursor untouched, so a resent copy is accepted.
func (c *Cursor) Apply(frame *Frame) (*jayson.Value, error) {
	if frame.Kind != KindText && frame.Kind != KindBinary {
		return nil, c.ProcessFrame(frame)
	}

	// duplicates and gaps fail before the payload is decoded
	c.mu.Lock()
	err := checkLocked(c.getLocked(frame.SID), frame)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	v, err := frame.Value()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.getLocked(frame.SID)
	if err := checkLocked(state, frame); err != nil {
		return nil, err
	}
	commitLocked(state, frame)
	setStateLocked(state, v)
	return v, nil
}

// SetState stores the current value of a stream and its digest.
func (c *Cursor) SetState(sid uint64, value *jayson.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	setStateLocked(c.getLocked(sid), value)
}

func setStateLocked(state *SIDState, value *jayson.Value) {
	state.State = value
	state.Digest = StateDigest(value)
	state.HasState = true
}

// lastSeq returns the last sequence number seen on sid.
func (c *Cursor) lastSeq(sid uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(sid).LastSeq
}

// skipTo moves the last sequence number of sid from prev to seq. It does
// nothing if another frame was recorded in between.
func (c *Cursor) skipTo(sid, prev, seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state := c.getLocked(sid); state.LastSeq == prev {
		state.LastSeq = seq
	}
}

// Ack marks a sequence as acknowledged.
func (c *Cursor) Ack(sid, seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.getLocked(sid)
	if seq > state.LastAcked {
		state.LastAcked = seq
	}
}

// PendingAcks returns sequences that have been seen but not acked.
func (c *Cursor) PendingAcks(sid uint64) []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	state := c.cursors[sid]
	if state == nil || state.LastSeq <= state.LastAcked {
		return nil
	}

	pending := make([]uint64, 0, state.LastSeq-state.LastAcked)
	for seq := state.LastAcked + 1; seq <= state.LastSeq; seq++ {
		pending = append(pending, seq)
	}
	return pending
}

// NeedsResync returns true if the stream has no state to apply patches to.
func (c *Cursor) NeedsResync(sid uint64) bool {
	state := c.GetReadOnly(sid)
	if state == nil {
		return true
	}
	return !state.HasState
}

// ============================================================
// Frame Handler - functional processing helper
// ============================================================

// FrameHandler decodes frames, tracks them in a Cursor and dispatches them
// to callbacks.
type FrameHandler struct {
	Cursor *Cursor

	// Callbacks (optional)
	OnValue func(sid, seq uint64, v *jayson.Value, state *SIDState) error
	OnErr   func(sid, seq uint64, msg string, state *SIDState) error
	OnPing  func(sid, seq uint64) error
	OnFinal func(sid uint64, state *SIDState) error

	// OnSeqGap is called on a sequence gap. Returning nil accepts the frame.
	OnSeqGap func(sid uint64, expected, got uint64) error
}

// NewFrameHandler creates a handler with a fresh cursor.
func NewFrameHandler() *FrameHandler {
	return &FrameHandler{
		Cursor: NewCursor(),
	}
}

// Handle processes a frame and calls the matching callback. Duplicate and
// out-of-order frames are skipped.
func (h *FrameHandler) Handle(frame *Frame) error {
	state := h.Cursor.Get(frame.SID)

	if last := h.Cursor.lastSeq(frame.SID); frame.Seq != 0 && last > 0 {
		if frame.Seq <= last {
			return nil
		}
		if frame.Seq != last+1 {
			if h.OnSeqGap == nil {
				return &SeqError{SID: frame.SID, Expected: last + 1, Got: frame.Seq}
			}
			if err := h.OnSeqGap(frame.SID, last+1, frame.Seq); err != nil {
				return err
			}
			// accepted: resume from the frame before this one
			h.Cursor.skipTo(frame.SID, last, frame.Seq-1)
		}
	}

	v, err := h.Cursor.Apply(frame)
	if err != nil {
		return err
	}

	switch frame.Kind {
	case KindText, KindBinary:
		if h.OnValue != nil {
			err = h.OnValue(frame.SID, frame.Seq, v, state)
		}
	case KindErr:
		if h.OnErr != nil {
			err = h.OnErr(frame.SID, frame.Seq, string(frame.Payload), state)
		}
	case KindPing:
		if h.OnPing != nil {
			err = h.OnPing(frame.SID, frame.Seq)
		}
	}
	if err != nil {
		return err
	}

	if frame.Final && h.OnFinal != nil {
		return h.OnFinal(frame.SID, state)
	}
	return nil
}
