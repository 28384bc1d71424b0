package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session binds one connection to its character and interaction mode.
//
// The inbound queue is the only session state touched off the tick
// goroutine: the connection's reader goroutine appends lines under inMu,
// and the tick drains them. Everything else, the outbound queue included,
// is owned by the tick goroutine.
type Session struct {
	ID   string
	conn Conn

	inMu         sync.Mutex
	inbound      []string
	disconnected bool

	outbound []string

	Mode     Mode
	LastMode Mode

	Char     *Character
	quitting bool
	created  time.Time
}

func newSession(conn Conn) *Session {
	return &Session{
		ID:      uuid.NewString(),
		conn:    conn,
		created: time.Now(),
	}
}

// QueueLine records a line of player input for the next tick. Called from
// the connection's reader goroutine.
func (s *Session) QueueLine(line string) {
	s.inMu.Lock()
	s.inbound = append(s.inbound, line)
	s.inMu.Unlock()
}

// MarkDisconnected records that the connection's reader saw EOF or an
// error. The tick loop turns this into an implicit quit.
func (s *Session) MarkDisconnected() {
	s.inMu.Lock()
	s.disconnected = true
	s.inMu.Unlock()
}

// drainInput swaps out the queued lines and reports whether the reader
// side has gone away.
func (s *Session) drainInput() ([]string, bool) {
	s.inMu.Lock()
	lines := s.inbound
	s.inbound = nil
	gone := s.disconnected
	s.inMu.Unlock()
	return lines, gone
}

// Send queues a message for delivery in the tick's output flush phase.
func (s *Session) Send(msg string) {
	if s == nil {
		return
	}
	s.outbound = append(s.outbound, msg)
}

// Sendf formats and queues a message.
func (s *Session) Sendf(format string, args ...any) {
	if s == nil {
		return
	}
	s.outbound = append(s.outbound, fmt.Sprintf(format, args...))
}

// SetMode replaces the current interaction mode and clears any saved one.
func (s *Session) SetMode(mode Mode) {
	s.Mode = mode
	s.LastMode = nil
}

// EnterNested switches into a temporary mode, remembering the current
// mode so ExitNested can restore it. Only one level is kept; entering a
// second nested mode forgets the first saved mode.
func (s *Session) EnterNested(mode Mode) {
	s.LastMode = s.Mode
	s.Mode = mode
}

// ExitNested restores the mode saved by EnterNested, falling back to
// normal play when nothing was saved.
func (s *Session) ExitNested() {
	if s.LastMode != nil {
		s.Mode = s.LastMode
		s.LastMode = nil
		return
	}
	s.Mode = NewNormalMode()
}

// BeginQuit flags the session for removal in the next cleanup phase.
// Output queued before the flag is still flushed first.
func (s *Session) BeginQuit() {
	s.quitting = true
}

// Quitting reports whether the session is flagged for removal.
func (s *Session) Quitting() bool {
	return s.quitting
}

const defaultWrapWidth = 78

// Width returns the column width to wrap output at: the client's
// negotiated window width when the transport reports a sane one, the
// default otherwise.
func (s *Session) Width() int {
	sizer, ok := s.conn.(WindowSizer)
	if !ok {
		return defaultWrapWidth
	}
	w, _ := sizer.Size()
	if w < minWrapWidth || w > 200 {
		return defaultWrapWidth
	}
	return w
}
