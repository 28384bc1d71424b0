package game

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"CinderMUD/internal/store"
)

// fakeConn is an in-memory Conn. Lines pushed onto the channel feed the
// reader goroutine; everything written is captured for assertions.
type fakeConn struct {
	mu     sync.Mutex
	wrote  []string
	lines  chan string
	closed bool

	failWrites bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{lines: make(chan string, 8)}
}

func (c *fakeConn) ReadLine() (string, error) {
	line, ok := <-c.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (c *fakeConn) WriteString(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return fmt.Errorf("write refused")
	}
	c.wrote = append(c.wrote, msg)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) RemoteAddr() string { return "fake:0" }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.lines)
	}
	return nil
}

func (c *fakeConn) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.wrote, "")
}

// sizedConn is a fakeConn whose transport reports a client window.
type sizedConn struct {
	*fakeConn
	width  int
	height int
}

func (c *sizedConn) Size() (int, int) { return c.width, c.height }

// memStore is a map-backed Store for tests that need persistence without
// touching disk.
type memStore struct {
	nextID int64
	tables map[string][]store.Row
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string][]store.Row)}
}

func (m *memStore) Insert(table string, fields store.Row) (int64, error) {
	m.nextID++
	row := store.Row{"id": m.nextID}
	for k, v := range fields {
		row[k] = v
	}
	m.tables[table] = append(m.tables[table], row)
	return m.nextID, nil
}

func (m *memStore) Update(table string, id int64, fields store.Row) (int64, error) {
	for _, row := range m.tables[table] {
		if row["id"] == id {
			for k, v := range fields {
				row[k] = v
			}
			return 1, nil
		}
	}
	return 0, store.ErrNoRows
}

func (m *memStore) Select(table string, criteria store.Row) ([]store.Row, error) {
	var out []store.Row
	for _, row := range m.tables[table] {
		if rowMatches(row, criteria) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memStore) Delete(table string, criteria store.Row) (int64, error) {
	kept := m.tables[table][:0]
	var removed int64
	for _, row := range m.tables[table] {
		if rowMatches(row, criteria) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	m.tables[table] = kept
	return removed, nil
}

func (m *memStore) Close() error { return nil }

func rowMatches(row, criteria store.Row) bool {
	for k, v := range criteria {
		if row[k] != v {
			return false
		}
	}
	return true
}

// newStoredWorld is a test world wired to an in-memory store.
func newStoredWorld() *World {
	w := NewWorldForTest()
	w.store = newMemStore()
	return w
}

// attachSession registers a session without spinning up a reader goroutine.
func attachSession(w *World, conn Conn) *Session {
	s := newSession(conn)
	s.Mode = NewNormalMode()
	w.sessionsMu.Lock()
	w.sessions[s.ID] = s
	w.order = append(w.order, s.ID)
	w.sessionsMu.Unlock()
	return s
}

// newTestPlayer binds a fresh character to a session on a fake connection.
func newTestPlayer(w *World, name string) (*Session, *fakeConn) {
	conn := newFakeConn()
	s := attachSession(w, conn)
	char := NewCharacter(name)
	char.Session = s
	s.Char = char
	return s, conn
}
