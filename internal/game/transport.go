package game

import "time"

// Conn abstracts a player connection so that sessions do not care whether
// a player arrived over telnet or a websocket. ReadLine blocks and is
// called from the connection's reader goroutine; WriteString is called
// from the tick goroutine's flush phase.
type Conn interface {
	ReadLine() (string, error)
	WriteString(msg string) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

// WindowSizer is implemented by transports that learn the client's window
// dimensions during negotiation.
type WindowSizer interface {
	Size() (width, height int)
}
