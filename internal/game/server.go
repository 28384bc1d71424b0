package game

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Server owns the listeners that feed connections into a world. The world
// tick loop runs on its own goroutine; acceptors only ever call Attach.
type Server struct {
	world *World

	telnetLn net.Listener
	httpSrv  *http.Server
	stop     chan struct{}
	stopped  chan struct{}
}

// NewServer wires a server around the world.
func NewServer(world *World) *Server {
	return &Server{
		world:   world,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start opens the configured listeners and starts the tick loop. It
// returns once everything is listening; errors after that are logged.
func (srv *Server) Start() error {
	cfg := srv.world.Config()

	ln, err := net.Listen("tcp", cfg.TelnetAddr)
	if err != nil {
		return fmt.Errorf("listen telnet %s: %w", cfg.TelnetAddr, err)
	}
	srv.telnetLn = ln
	log.Printf("telnet listening on %s", ln.Addr())
	go func() {
		if err := acceptConnections(ln, srv.handleTelnet); err != nil {
			select {
			case <-srv.stop:
			default:
				log.Printf("telnet accept loop: %v", err)
			}
		}
	}()

	if cfg.WebsocketAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", srv.handleWebsocket)
		srv.httpSrv = &http.Server{Addr: cfg.WebsocketAddr, Handler: mux}
		go func() {
			log.Printf("websocket listening on %s", cfg.WebsocketAddr)
			if err := srv.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("websocket server: %v", err)
			}
		}()
	}

	go func() {
		srv.world.Run(srv.stop)
		close(srv.stopped)
	}()
	return nil
}

// Stop closes the listeners and shuts the world down, waiting for the
// tick loop to finish its final pass.
func (srv *Server) Stop() {
	close(srv.stop)
	if srv.telnetLn != nil {
		_ = srv.telnetLn.Close()
	}
	if srv.httpSrv != nil {
		_ = srv.httpSrv.Close()
	}
	<-srv.stopped
}

func (srv *Server) handleTelnet(conn net.Conn) {
	srv.world.Attach(NewTelnetConn(conn))
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (srv *Server) handleWebsocket(rw http.ResponseWriter, req *http.Request) {
	conn, err := wsUpgrader.Upgrade(rw, req, nil)
	if err != nil {
		log.Printf("websocket upgrade from %s: %v", req.RemoteAddr, err)
		return
	}
	srv.world.Attach(NewWebsocketConn(conn))
}

const (
	acceptBackoffStart = 50 * time.Millisecond
	acceptBackoffMax   = time.Second
)

var acceptSleep = time.Sleep

// acceptConnections accepts until a permanent error, backing off on
// temporary ones so a transient fd exhaustion never kills the listener.
func acceptConnections(ln net.Listener, handle func(net.Conn)) error {
	backoff := acceptBackoffStart
	for {
		conn, err := ln.Accept()
		if err != nil {
			if isTemporaryAcceptError(err) {
				log.Printf("temporary error accepting connection: %v; retrying in %s", err, backoff)
				acceptSleep(backoff)
				backoff *= 2
				if backoff > acceptBackoffMax {
					backoff = acceptBackoffMax
				}
				continue
			}
			return err
		}
		backoff = acceptBackoffStart
		handle(conn)
	}
}

func isTemporaryAcceptError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() || ne.Temporary() {
			return true
		}
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	return false
}
