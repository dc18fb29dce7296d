package mpd

import (
	"bufio"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"Bt1QRadio/logger"
	"Bt1QRadio/model"
)

// Protocol greeting, sent once per accepted connection.
const greeting = "OK MPD 0.20.0"

type sessionMode int

const (
	modeNormal sessionMode = iota
	modeCommandList
	modeIdle
)

const (
	// commandListMax bounds the batch buffer; one past it aborts the list.
	commandListMax = 50
	// lineQueueDepth bounds read-ahead between the connection reader
	// goroutine and Poll.
	lineQueueDepth = 8

	writeTimeout = 2 * time.Second
)

// Session is one attached protocol connection. A dedicated goroutine reads
// lines into a bounded channel; Poll, called once per control-plane tick,
// consumes at most one line and never blocks.
type Session struct {
	srv  *Server
	conn net.Conn
	w    *bufio.Writer

	lines chan string
	gone  atomic.Bool // reader saw EOF or a read error

	mode    sessionMode
	cmdList []string
	listOK  bool // command_list_ok_begin variant

	// Idle-mode fingerprints, snapshotted when idle begins.
	titleFP  uint32
	statusFP uint32

	// Set by close/kill; the session drops after the reply is flushed.
	closeRequested   bool
	restartRequested bool
}

func newSession(srv *Server, conn net.Conn) *Session {
	s := &Session{
		srv:   srv,
		conn:  conn,
		w:     bufio.NewWriter(conn),
		lines: make(chan string, lineQueueDepth),
	}
	go s.readLoop()
	return s
}

// readLoop feeds complete lines into the session channel. It owns the
// blocking read; everything else about the session is serviced by Poll.
func (s *Session) readLoop() {
	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		s.lines <- strings.TrimSpace(scanner.Text())
	}
	s.gone.Store(true)
	close(s.lines)
}

// alive reports whether the connection is still usable.
func (s *Session) alive() bool {
	return !s.gone.Load()
}

// close tears the connection down. Any buffered command list is discarded
// with it.
func (s *Session) close() {
	s.gone.Store(true)
	s.conn.Close()
}

// Poll runs one bounded step of the session state machine: at most one
// line consumed, idle fingerprints re-checked, no blocking waits.
func (s *Session) Poll() {
	if s.mode == modeIdle {
		s.pollIdle()
		return
	}

	select {
	case line, ok := <-s.lines:
		if !ok {
			return
		}
		s.handleLine(line)
	default:
	}
}

// pollIdle re-checks the fingerprints every tick. A delta ends the wait
// with the changed subsystems; otherwise a pending line may cancel it.
func (s *Session) pollIdle() {
	title, status := model.Fingerprints(s.srv.player.Status())

	if title != s.titleFP || status != s.statusFP {
		if title != s.titleFP {
			s.writeLine("changed: playlist")
		}
		if status != s.statusFP {
			s.writeLine("changed: player")
			s.writeLine("changed: mixer")
		}
		s.writeLine("OK")
		s.flush()
		s.mode = modeNormal
		return
	}

	select {
	case line, ok := <-s.lines:
		if !ok {
			return
		}
		s.mode = modeNormal
		if line == "noidle" || line == "" {
			s.writeLine("OK")
			s.flush()
			return
		}
		// Any other command cancels the wait and runs normally.
		s.writeLine("OK")
		s.flush()
		s.handleLine(line)
	default:
	}
}

// handleLine processes one line in NORMAL or COMMAND_LIST mode.
func (s *Session) handleLine(line string) {
	if line == "" {
		return
	}

	if s.mode == modeCommandList {
		s.bufferListLine(line)
		s.maybeClose()
		return
	}

	switch {
	case line == "command_list_begin":
		s.mode = modeCommandList
		s.listOK = false
		s.cmdList = s.cmdList[:0]
		return
	case line == "command_list_ok_begin":
		s.mode = modeCommandList
		s.listOK = true
		s.cmdList = s.cmdList[:0]
		return
	case line == "idle" || strings.HasPrefix(line, "idle "):
		// Subsystem arguments are accepted and ignored; every change
		// this engine tracks maps onto the same two fingerprints.
		s.titleFP, s.statusFP = model.Fingerprints(s.srv.player.Status())
		s.mode = modeIdle
		return
	}

	s.execute(line, "OK")
	s.flush()
	s.maybeClose()
}

// maybeClose finishes a close or kill request once the reply is out.
func (s *Session) maybeClose() {
	if !s.closeRequested {
		return
	}
	restart := s.restartRequested
	s.srv.detach(s)
	if restart && s.srv.restart != nil {
		logger.Info("restart requested over protocol")
		s.srv.restart()
	}
}

// bufferListLine collects commands until command_list_end, then replays
// them in submission order. Buffering past the capacity aborts the list.
func (s *Session) bufferListLine(line string) {
	if line == "command_list_end" {
		s.runCommandList()
		return
	}

	if len(s.cmdList) >= commandListMax {
		s.writeLine(ackf(ackErrorListMax, line, "command list too long (max %d)", commandListMax).line())
		s.flush()
		s.mode = modeNormal
		s.cmdList = s.cmdList[:0]
		return
	}
	s.cmdList = append(s.cmdList, line)
}

// runCommandList replays the buffered batch. The ok variant terminates
// each replayed command with list_OK; the plain variant suppresses the
// intermediate markers. Either way exactly one final OK follows, unless a
// command fails, which aborts the remainder with its ACK.
func (s *Session) runCommandList() {
	term := ""
	if s.listOK {
		term = "list_OK"
	}

	failed := false
	for _, line := range s.cmdList {
		if !s.execute(line, term) {
			failed = true
			break
		}
	}
	if !failed {
		s.writeLine("OK")
	}
	s.flush()

	s.mode = modeNormal
	s.cmdList = s.cmdList[:0]
}

// execute dispatches one command line and terminates it with term when
// non-empty. Returns false when the command failed and an ACK was written.
func (s *Session) execute(line, term string) bool {
	cmd, args, ok := lookup(line)
	if !ok {
		name := line
		if i := strings.IndexByte(name, ' '); i >= 0 {
			name = name[:i]
		}
		s.writeLine(ackf(ackErrorUnknown, name, "unknown command %q", name).line())
		return false
	}

	if cmd.handler == nil {
		// Mode-switching commands are inert inside a command list.
		if term != "" {
			s.writeLine(term)
		}
		return true
	}

	if err := cmd.handler(s, args); err != nil {
		perr, isProto := err.(*protocolError)
		if !isProto {
			perr = ackf(ackErrorSystem, cmd.name, "%s", err.Error())
		}
		s.writeLine(perr.line())
		return false
	}

	if term != "" {
		s.writeLine(term)
	}
	return true
}

func (s *Session) writeLine(line string) {
	s.w.WriteString(line)
	s.w.WriteByte('\n')
}

// flush pushes buffered output with a write deadline so a stalled client
// cannot block the control loop past a bounded duration.
func (s *Session) flush() {
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.w.Flush(); err != nil {
		logger.Warn("protocol write failed, dropping session", logger.ErrorField(err))
		s.close()
	}
	s.conn.SetWriteDeadline(time.Time{})
}
