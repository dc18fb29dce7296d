package mpd

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"Bt1QRadio/core/player"
	"Bt1QRadio/logger"
)

// Server accepts protocol connections and owns the single attached
// session. A second connection attempt is greeted, told off and closed
// without disturbing the attached session. Poll is driven by the
// control-plane loop; the accept loop runs in its own goroutine and only
// touches the session slot under the mutex.
type Server struct {
	addr    string
	player  *player.Player
	restart func() // kill command callback
	started time.Time

	ln net.Listener

	mu      sync.Mutex
	session *Session
}

// NewServer creates a protocol server. restart is invoked by the kill
// command and may be nil.
func NewServer(addr string, p *player.Player, restart func()) *Server {
	return &Server{
		addr:    addr,
		player:  p,
		restart: restart,
		started: time.Now(),
	}
}

// Start begins listening and accepting connections.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.ln = ln

	go s.acceptLoop()
	logger.Info("protocol server listening", logger.String("addr", s.addr))
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			// Listener closed on shutdown.
			return
		}
		s.Attach(conn)
	}
}

// Attach installs conn as the session, or rejects it when one is already
// attached. A stale half-closed session is discarded first.
func (s *Server) Attach(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && !s.session.alive() {
		s.session.close()
		s.session = nil
	}

	if s.session != nil {
		// The newcomer still gets the greeting so client libraries can
		// parse the rejection that follows.
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		fmt.Fprintf(conn, "%s\n%s\n", greeting,
			ackf(ackErrorPermission, "", "Only one client allowed at a time").line())
		conn.Close()
		logger.Info("rejected second protocol client",
			logger.String("remote", conn.RemoteAddr().String()))
		return
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := fmt.Fprintf(conn, "%s\n", greeting); err != nil {
		conn.Close()
		return
	}
	conn.SetWriteDeadline(time.Time{})

	s.session = newSession(s, conn)
	logger.Info("protocol client attached",
		logger.String("remote", conn.RemoteAddr().String()))
}

// Poll services the attached session for one bounded step. Safe to call
// with no session attached.
func (s *Server) Poll() {
	s.mu.Lock()
	sess := s.session
	if sess != nil && !sess.alive() {
		sess.close()
		s.session = nil
		sess = nil
		logger.Info("protocol client detached")
	}
	s.mu.Unlock()

	if sess != nil {
		sess.Poll()
	}
}

// HasSession reports whether a client is attached.
func (s *Server) HasSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && s.session.alive()
}

// Stop closes the listener and any attached session.
func (s *Server) Stop() {
	if s.ln != nil {
		s.ln.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.close()
		s.session = nil
	}
}

// detach drops the attached session; used by the close command.
func (s *Server) detach(sess *Session) {
	sess.close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == sess {
		s.session = nil
	}
}

// checkpoint persists the player state after a user-initiated action.
// Failures are logged; the dirty mark survives for the next attempt.
func (s *Server) checkpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.player.SaveState(ctx); err != nil {
		logger.Warn("failed to persist player state", logger.ErrorField(err))
	}
}

// Uptime returns whole seconds since the server started.
func (s *Server) Uptime() int64 {
	return int64(time.Since(s.started).Seconds())
}
