package game

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/charmap"
)

const (
	telnetIAC  byte = 255
	telnetDONT byte = 254
	telnetDO   byte = 253
	telnetWONT byte = 252
	telnetWILL byte = 251
	telnetSB   byte = 250
	telnetSE   byte = 240
	telnetNOP  byte = 241
	telnetDM   byte = 242
	telnetBRK  byte = 243
	telnetIP   byte = 244
	telnetAO   byte = 245
	telnetAYT  byte = 246
	telnetEC   byte = 247
	telnetEL   byte = 248
	telnetGA   byte = 249
)

const (
	telnetOptEcho         byte = 1
	telnetOptSuppressGA   byte = 3
	telnetOptTerminalType byte = 24
	telnetOptWindowSize   byte = 31
	telnetOptLineMode     byte = 34
	telnetOptCharset      byte = 42
)

const (
	charsetRequest  byte = 1
	charsetAccepted byte = 2
	charsetRejected byte = 3
)

var (
	serverSupportedOptions = map[byte]bool{
		telnetOptSuppressGA: true,
		telnetOptCharset:    true,
	}
	clientSupportedOptions = map[byte]bool{
		telnetOptTerminalType: true,
		telnetOptWindowSize:   true,
		telnetOptCharset:      true,
	}
)

// TelnetConn wraps a raw TCP connection with telnet option negotiation
// and line discipline. It implements Conn.
type TelnetConn struct {
	conn     net.Conn
	reader   *bufio.Reader
	mu       sync.Mutex
	width    int
	height   int
	term     string
	encoding *charmap.Charmap // nil means UTF-8 passthrough
}

// NewTelnetConn performs the option handshake and returns the connection
// ready for line I/O.
func NewTelnetConn(conn net.Conn) *TelnetConn {
	t := &TelnetConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
		width:  80,
		height: 24,
	}
	t.performHandshake()
	return t
}

func (t *TelnetConn) performHandshake() {
	_ = t.writeCommand(telnetWILL, telnetOptSuppressGA)
	_ = t.writeCommand(telnetWONT, telnetOptEcho)
	_ = t.writeCommand(telnetDONT, telnetOptLineMode)
	_ = t.writeCommand(telnetDO, telnetOptTerminalType)
	_ = t.writeCommand(telnetDO, telnetOptWindowSize)
	_ = t.writeCommand(telnetWILL, telnetOptCharset)
}

func (t *TelnetConn) writeCommand(cmd, opt byte) error {
	return t.writeRaw([]byte{telnetIAC, cmd, opt})
}

func (t *TelnetConn) writeRaw(payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.conn.Write(payload)
	return err
}

func (t *TelnetConn) WriteString(msg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.term == "DUMB" {
		// a dumb terminal renders escape codes as garbage
		msg = StripAnsi(msg)
	}
	raw := []byte(msg)
	if t.encoding != nil {
		raw = encodeWithCharmap(t.encoding, raw)
	}
	_, err := t.conn.Write(translateForTelnet(raw))
	return err
}

func translateForTelnet(msg []byte) []byte {
	var buf bytes.Buffer
	var prev byte
	for i := 0; i < len(msg); i++ {
		b := msg[i]
		switch b {
		case '\n':
			if prev != '\r' {
				buf.WriteByte('\r')
			}
			buf.WriteByte('\n')
		case telnetIAC:
			buf.WriteByte(telnetIAC)
			buf.WriteByte(telnetIAC)
		default:
			buf.WriteByte(b)
		}
		prev = b
	}
	return buf.Bytes()
}

func (t *TelnetConn) ReadLine() (string, error) {
	var buf bytes.Buffer
	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case '\r':
			if next, err := t.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = t.reader.ReadByte()
			}
			return t.decodeLine(buf.Bytes()), nil
		case '\n':
			return t.decodeLine(buf.Bytes()), nil
		case 0x08, 0x7f:
			bs := buf.Bytes()
			if len(bs) > 0 {
				buf.Truncate(len(bs) - 1)
			}
		case 0x00:
			// ignore NULs
		case telnetIAC:
			if err := t.handleIAC(&buf); err != nil {
				return "", err
			}
		default:
			buf.WriteByte(b)
		}
	}
}

func (t *TelnetConn) handleIAC(buf *bytes.Buffer) error {
	cmd, err := t.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case telnetIAC:
		buf.WriteByte(telnetIAC)
	case telnetDO, telnetDONT, telnetWILL, telnetWONT:
		opt, err := t.reader.ReadByte()
		if err != nil {
			return err
		}
		t.handleNegotiation(cmd, opt)
	case telnetSB:
		return t.handleSubnegotiation()
	case telnetNOP, telnetDM, telnetBRK, telnetIP, telnetAO, telnetAYT, telnetEC, telnetEL, telnetGA:
		// ignored control commands
	default:
		// ignore anything unknown to keep stream resilient
	}
	return nil
}

func (t *TelnetConn) decodeLine(raw []byte) string {
	t.mu.Lock()
	cm := t.encoding
	t.mu.Unlock()
	if cm != nil {
		return decodeWithCharmap(cm, raw)
	}
	return string(raw)
}

func (t *TelnetConn) handleNegotiation(cmd, opt byte) {
	switch cmd {
	case telnetDO:
		if serverSupportedOptions[opt] {
			_ = t.writeCommand(telnetWILL, opt)
			if opt == telnetOptCharset {
				t.sendCharsetRequest()
			}
		} else {
			_ = t.writeCommand(telnetWONT, opt)
		}
	case telnetDONT:
		_ = t.writeCommand(telnetWONT, opt)
	case telnetWILL:
		if clientSupportedOptions[opt] {
			_ = t.writeCommand(telnetDO, opt)
		} else {
			_ = t.writeCommand(telnetDONT, opt)
		}
	case telnetWONT:
		_ = t.writeCommand(telnetDONT, opt)
	}
}

func (t *TelnetConn) handleSubnegotiation() error {
	opt, err := t.reader.ReadByte()
	if err != nil {
		return err
	}
	payload := make([]byte, 0, 16)
	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			return err
		}
		if b == telnetIAC {
			esc, err := t.reader.ReadByte()
			if err != nil {
				return err
			}
			if esc == telnetIAC {
				payload = append(payload, telnetIAC)
				continue
			}
			if esc == telnetSE {
				break
			}
			// unexpected command inside subnegotiation, ignore and continue
			continue
		}
		payload = append(payload, b)
	}

	switch opt {
	case telnetOptTerminalType:
		if len(payload) > 1 && payload[0] == 0 { // IS
			t.mu.Lock()
			t.term = strings.ToUpper(string(payload[1:]))
			t.mu.Unlock()
		}
	case telnetOptWindowSize:
		if len(payload) >= 4 {
			t.mu.Lock()
			t.width = int(payload[0])<<8 | int(payload[1])
			t.height = int(payload[2])<<8 | int(payload[3])
			t.mu.Unlock()
		}
	case telnetOptCharset:
		t.handleCharset(payload)
	}
	return nil
}

// sendCharsetRequest offers the encodings the server can speak, best
// first. The client answers with ACCEPTED naming one of them.
func (t *TelnetConn) sendCharsetRequest() {
	offer := ";UTF-8;ISO-8859-1;CP437;WINDOWS-1252"
	msg := append([]byte{telnetIAC, telnetSB, telnetOptCharset, charsetRequest}, offer...)
	msg = append(msg, telnetIAC, telnetSE)
	_ = t.writeRaw(msg)
}

func (t *TelnetConn) handleCharset(payload []byte) {
	if len(payload) < 2 {
		return
	}
	switch payload[0] {
	case charsetAccepted:
		t.setCharset(sanitizeTelnetString(payload[1:]))
	case charsetRequest:
		for _, name := range parseCharsetList(sanitizeTelnetString(payload[1:])) {
			if t.setCharset(name) {
				reply := append([]byte{telnetIAC, telnetSB, telnetOptCharset, charsetAccepted}, name...)
				reply = append(reply, telnetIAC, telnetSE)
				_ = t.writeRaw(reply)
				return
			}
		}
		_ = t.writeRaw([]byte{telnetIAC, telnetSB, telnetOptCharset, charsetRejected, telnetIAC, telnetSE})
	case charsetRejected:
		// client keeps the default, nothing to do
	}
}

// setCharset switches the connection encoding if the named charset is
// one the server understands. UTF-8 clears any charmap translation.
func (t *TelnetConn) setCharset(name string) bool {
	token := normalizeToken(name)
	if token == "UTF8" || token == "ASCII" || token == "USASCII" {
		t.mu.Lock()
		t.encoding = nil
		t.mu.Unlock()
		return true
	}
	cm, ok := knownCharmaps[token]
	if !ok {
		return false
	}
	t.mu.Lock()
	t.encoding = cm
	t.mu.Unlock()
	return true
}

func (t *TelnetConn) SetWriteDeadline(deadline time.Time) error {
	return t.conn.SetWriteDeadline(deadline)
}

func (t *TelnetConn) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

func (t *TelnetConn) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.Close()
}

// Size reports the client window dimensions learned through NAWS. The
// negotiation runs on the reader goroutine while the tick flush reads the
// result, hence the lock.
func (t *TelnetConn) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}
