package mpd

import "strings"

// handlerFunc executes one command. args is the remainder of the line
// after the matched name, already trimmed.
type handlerFunc func(s *Session, args string) error

// command is one entry in the static dispatch registry. Prefix entries
// also match argument-bearing variants of their name ("play 2"); exact
// entries match the bare name only.
type command struct {
	name    string
	prefix  bool
	handler handlerFunc
}

// registry maps incoming lines to handlers. Order matters only for
// readability; prefix matches require the separator, so "playlistinfo"
// can never be swallowed by "play".
var registry = []command{
	{"clearerror", false, handleOK},
	{"currentsong", false, handleCurrentSong},
	{"idle", true, nil}, // mode switch, handled by the session itself
	{"noidle", false, handleOK},
	{"status", false, handleStatus},
	{"stats", false, handleStats},

	{"consume", true, handleOK},
	{"random", true, handleOK},
	{"repeat", true, handleOK},
	{"single", true, handleOK},
	{"crossfade", true, handleOK},

	{"getvol", false, handleGetVol},
	{"setvol", true, handleSetVol},
	{"volume", true, handleVolume},

	{"next", false, handleNext},
	{"previous", false, handlePrevious},
	{"pause", true, handleStop}, // a live stream cannot pause, only stop
	{"play", true, handlePlay},
	{"playid", true, handlePlay},
	{"stop", false, handleStop},
	{"seek", true, handleOK},
	{"seekid", true, handleOK},
	{"seekcur", true, handleOK},

	{"add", true, handleOK},
	{"addid", true, handleOK},
	{"clear", false, handleOK},
	{"delete", true, handleOK},
	{"deleteid", true, handleOK},
	{"move", true, handleOK},
	{"save", true, handleOK},
	{"load", true, handleOK},
	{"rename", true, handleOK},
	{"rm", true, handleOK},

	{"playlistinfo", true, handlePlaylistInfo},
	{"playlistid", true, handlePlaylistID},
	{"plchanges", true, handlePlaylistChanges},
	{"lsinfo", true, handleLsInfo},
	{"listallinfo", true, handleListAllInfo},
	{"listall", true, handleLsInfo},
	{"listplaylistinfo", true, handleListPlaylistInfo},
	{"listplaylists", false, handleListPlaylists},

	{"search", true, handleSearch},
	{"find", true, handleFind},
	{"list", true, handleOK},
	{"update", true, handleUpdate},

	{"close", false, handleClose},
	{"kill", false, handleKill},
	{"password", true, handleOK},
	{"ping", false, handleOK},

	{"commands", false, nil}, // patched in init; see below
	{"notcommands", false, handleOK},
	{"tagtypes", false, handleTagTypes},
	{"outputs", false, handleOutputs},
	{"enableoutput", true, handleOK},
	{"disableoutput", true, handleOK},
	{"decoders", false, handleDecoders},
	{"urlhandlers", false, handleURLHandlers},
}

// handleCommands walks the registry, so wiring it inside the registry
// literal would be an initialization cycle. Patch it in afterwards.
func init() {
	for i := range registry {
		if registry[i].name == "commands" {
			registry[i].handler = handleCommands
			return
		}
	}
}

// lookup matches a trimmed line against the registry and splits off the
// argument remainder.
func lookup(line string) (*command, string, bool) {
	for i := range registry {
		c := &registry[i]
		if line == c.name {
			return c, "", true
		}
		if c.prefix && strings.HasPrefix(line, c.name+" ") {
			return c, strings.TrimSpace(line[len(c.name)+1:]), true
		}
	}
	return nil, "", false
}

// handleOK acknowledges a command without doing anything. Several commands
// are deliberate no-ops here: seeking is meaningless on a live stream, and
// playlist mutation happens through the management channel, not the
// protocol.
func handleOK(s *Session, args string) error {
	return nil
}
