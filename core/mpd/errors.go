package mpd

import "fmt"

// ACK error classes, numbered like the protocol this engine is compatible
// with. The list position inside the brackets is always 0; command lists
// report the failing command by name instead.
type ackCode int

const (
	ackErrorArg        ackCode = 2  // missing or malformed argument
	ackErrorPermission ackCode = 4  // connection refused
	ackErrorUnknown    ackCode = 5  // unknown command
	ackErrorNoExist    ackCode = 50 // value out of range
	ackErrorListMax    ackCode = 51 // command list overflow
	ackErrorSystem     ackCode = 52 // resource failure (stream connect, store)
	ackErrorPlayerSync ackCode = 55 // empty playlist / not playing
)

// protocolError renders as one structured ACK line. Handlers return it for
// anything the client did wrong; the session is the only place internal
// failures become protocol text.
type protocolError struct {
	code    ackCode
	command string
	message string
}

func (e *protocolError) Error() string {
	return e.message
}

func (e *protocolError) line() string {
	return fmt.Sprintf("ACK [%d@0] {%s} %s", e.code, e.command, e.message)
}

// ackf builds a protocol error with a formatted message.
func ackf(code ackCode, command, format string, args ...interface{}) *protocolError {
	return &protocolError{
		code:    code,
		command: command,
		message: fmt.Sprintf(format, args...),
	}
}
