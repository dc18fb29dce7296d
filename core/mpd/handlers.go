package mpd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"Bt1QRadio/core/player"
)

// playerErr translates a player/playlist failure into a protocol error.
func playerErr(cmd string, err error) error {
	switch {
	case errors.Is(err, player.ErrEmptyPlaylist):
		return ackf(ackErrorPlayerSync, cmd, "playlist is empty")
	case errors.Is(err, player.ErrOutOfRange):
		return ackf(ackErrorNoExist, cmd, "index out of range")
	case errors.Is(err, player.ErrNoStreamToResume):
		return ackf(ackErrorPlayerSync, cmd, "nothing to resume")
	case errors.Is(err, player.ErrInvalidURL):
		return ackf(ackErrorArg, cmd, "invalid stream url")
	default:
		return ackf(ackErrorSystem, cmd, "%s", err)
	}
}

func handleStatus(s *Session, args string) error {
	p := s.srv.player
	pl := p.Playlist()
	status := p.Status()

	s.writeLine(fmt.Sprintf("volume: %d", player.VolumeToPercent(status.Volume)))
	s.writeLine("repeat: 0")
	s.writeLine("random: 0")
	s.writeLine("single: 0")
	s.writeLine("consume: 0")
	s.writeLine(fmt.Sprintf("playlistlength: %d", pl.Count()))

	if !status.Playing {
		s.writeLine("state: stop")
		return nil
	}
	s.writeLine("state: play")

	sel := pl.Selection()
	elapsed := p.Elapsed()
	s.writeLine(fmt.Sprintf("song: %d", sel+1))
	s.writeLine(fmt.Sprintf("songid: %d", sel+1))
	s.writeLine(fmt.Sprintf("time: %d:0", elapsed))
	s.writeLine(fmt.Sprintf("elapsed: %d", elapsed))
	s.writeLine(fmt.Sprintf("bitrate: %d", status.Bitrate))
	s.writeLine("audio: 44100:16:2")

	// A next entry is only reported when one actually exists; the
	// selection does not wrap here.
	if sel >= 0 && sel+1 < pl.Count() {
		s.writeLine(fmt.Sprintf("nextsong: %d", sel+2))
		s.writeLine(fmt.Sprintf("nextsongid: %d", sel+2))
	}
	return nil
}

func handleCurrentSong(s *Session, args string) error {
	p := s.srv.player
	status := p.Status()
	stream := p.Stream()

	if !status.Playing || stream.Name == "" {
		return nil
	}

	s.writeLine("file: " + stream.URL)

	// Stream titles usually come as "artist - title"; split on the first
	// separator, fall back to the whole title, then to the station name.
	switch {
	case strings.Contains(stream.Title, " - "):
		parts := strings.SplitN(stream.Title, " - ", 2)
		s.writeLine("Artist: " + parts[0])
		s.writeLine("Title: " + parts[1])
	case stream.Title != "":
		s.writeLine("Title: " + stream.Title)
	default:
		s.writeLine("Title: " + stream.Name)
	}
	s.writeLine("Name: " + stream.Name)

	sel := p.Playlist().Selection()
	s.writeLine(fmt.Sprintf("Pos: %d", sel+1))
	s.writeLine(fmt.Sprintf("Id: %d", sel+1))
	return nil
}

func handleStats(s *Session, args string) error {
	p := s.srv.player
	state := p.State()

	s.writeLine("artists: 0")
	s.writeLine("albums: 0")
	s.writeLine(fmt.Sprintf("songs: %d", p.Playlist().Count()))
	s.writeLine(fmt.Sprintf("uptime: %d", s.srv.Uptime()))
	s.writeLine(fmt.Sprintf("playtime: %d", state.TotalPlayTime+p.Elapsed()))
	return nil
}

func handleGetVol(s *Session, args string) error {
	s.writeLine(fmt.Sprintf("volume: %d", player.VolumeToPercent(s.srv.player.Volume())))
	return nil
}

func handleSetVol(s *Session, args string) error {
	pct, err := strconv.Atoi(args)
	if err != nil {
		return ackf(ackErrorArg, "setvol", "need an integer volume")
	}
	if pct < 0 || pct > 100 {
		return ackf(ackErrorNoExist, "setvol", "volume out of range 0-100")
	}

	s.srv.player.SetVolume(player.PercentToVolume(pct))
	s.srv.checkpoint()
	return nil
}

// handleVolume adjusts the volume by a signed percent delta, clamped.
func handleVolume(s *Session, args string) error {
	delta, err := strconv.Atoi(args)
	if err != nil {
		return ackf(ackErrorArg, "volume", "need an integer delta")
	}

	pct := player.VolumeToPercent(s.srv.player.Volume()) + delta
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	s.srv.player.SetVolume(player.PercentToVolume(pct))
	s.srv.checkpoint()
	return nil
}

func handlePlay(s *Session, args string) error {
	p := s.srv.player

	if args == "" {
		if err := p.PlayCurrent(); err != nil {
			return playerErr("play", err)
		}
		s.srv.checkpoint()
		return nil
	}

	n, err := strconv.Atoi(args)
	if err != nil {
		return ackf(ackErrorArg, "play", "need an integer index")
	}
	if n < 1 || n > p.Playlist().Count() {
		return ackf(ackErrorNoExist, "play", "index out of range")
	}

	if err := p.PlayIndex(n - 1); err != nil {
		return playerErr("play", err)
	}
	s.srv.checkpoint()
	return nil
}

func handleStop(s *Session, args string) error {
	s.srv.player.StopStream()
	s.srv.checkpoint()
	return nil
}

func handleNext(s *Session, args string) error {
	if err := s.srv.player.Next(); err != nil {
		return playerErr("next", err)
	}
	s.srv.checkpoint()
	return nil
}

func handlePrevious(s *Session, args string) error {
	if err := s.srv.player.Previous(); err != nil {
		return playerErr("previous", err)
	}
	s.srv.checkpoint()
	return nil
}

// listDetail selects which tag lines the enumeration commands emit. All
// of them share one walk over the playlist.
type listDetail int

const (
	detailMinimal listDetail = iota // file + Title
	detailTrack                     // + Track + Last-Modified
	detailIDPos                     // + Pos + Id
	detailFull                      // + Artist + Album
)

func (s *Session) writeEntries(detail listDetail) {
	lastMod := s.srv.started.UTC().Format("2006-01-02T15:04:05Z")

	for i, e := range s.srv.player.Playlist().Items() {
		s.writeLine("file: " + e.URL)
		s.writeLine("Title: " + e.Name)

		switch detail {
		case detailTrack:
			s.writeLine(fmt.Sprintf("Track: %d", i+1))
			s.writeLine("Last-Modified: " + lastMod)
		case detailIDPos:
			s.writeLine(fmt.Sprintf("Pos: %d", i+1))
			s.writeLine(fmt.Sprintf("Id: %d", i+1))
		case detailFull:
			s.writeLine("Artist: ")
			s.writeLine("Album: ")
		}
	}
}

func handlePlaylistInfo(s *Session, args string) error {
	s.writeEntries(detailFull)
	return nil
}

func handlePlaylistID(s *Session, args string) error {
	s.writeEntries(detailIDPos)
	return nil
}

func handlePlaylistChanges(s *Session, args string) error {
	s.writeEntries(detailIDPos)
	return nil
}

func handleLsInfo(s *Session, args string) error {
	s.writeEntries(detailTrack)
	return nil
}

func handleListAllInfo(s *Session, args string) error {
	s.writeEntries(detailTrack)
	return nil
}

func handleListPlaylistInfo(s *Session, args string) error {
	s.writeEntries(detailMinimal)
	return nil
}

func handleListPlaylists(s *Session, args string) error {
	s.writeLine("playlist: stations")
	s.writeLine("Last-Modified: " + s.srv.started.UTC().Format("2006-01-02T15:04:05Z"))
	return nil
}

func handleSearch(s *Session, args string) error {
	return s.matchEntries("search", args, func(name, term string) bool {
		return strings.Contains(strings.ToLower(name), strings.ToLower(term))
	})
}

func handleFind(s *Session, args string) error {
	return s.matchEntries("find", args, func(name, term string) bool {
		return strings.EqualFold(name, term)
	})
}

// matchEntries implements the shared search/find scan. Querying by artist
// or album cannot narrow a station list, so those tag types return the
// full listing.
func (s *Session) matchEntries(cmd, args string, match func(name, term string) bool) error {
	fields := splitQuoted(args)
	if len(fields) == 0 {
		return ackf(ackErrorArg, cmd, "need a tag type and a search term")
	}

	tag := strings.ToLower(fields[0])
	if tag == "artist" || tag == "album" {
		s.writeEntries(detailMinimal)
		return nil
	}

	if len(fields) < 2 {
		return ackf(ackErrorArg, cmd, "need a search term")
	}
	term := fields[len(fields)-1]

	for _, e := range s.srv.player.Playlist().Items() {
		if match(e.Name, term) {
			s.writeLine("file: " + e.URL)
			s.writeLine("Title: " + e.Name)
		}
	}
	return nil
}

func handleUpdate(s *Session, args string) error {
	// There is no database to update; clients still expect the job id.
	s.writeLine("updating_db: 1")
	return nil
}

func handleCommands(s *Session, args string) error {
	for _, c := range registry {
		s.writeLine("command: " + c.name)
	}
	return nil
}

func handleTagTypes(s *Session, args string) error {
	for _, t := range []string{"Artist", "Album", "Title", "Track", "Name"} {
		s.writeLine("tagtype: " + t)
	}
	return nil
}

func handleOutputs(s *Session, args string) error {
	s.writeLine("outputid: 0")
	s.writeLine("outputname: VS1053 DAC")
	s.writeLine("outputenabled: 1")
	return nil
}

func handleDecoders(s *Session, args string) error {
	s.writeLine("plugin: vs1053")
	s.writeLine("suffix: mp3")
	s.writeLine("suffix: aac")
	s.writeLine("mime_type: audio/mpeg")
	s.writeLine("mime_type: audio/aacp")
	return nil
}

func handleURLHandlers(s *Session, args string) error {
	s.writeLine("handler: http://")
	s.writeLine("handler: https://")
	return nil
}

func handleClose(s *Session, args string) error {
	s.closeRequested = true
	return nil
}

func handleKill(s *Session, args string) error {
	s.closeRequested = true
	s.restartRequested = true
	return nil
}

// splitQuoted splits a command tail into fields, honoring double quotes
// with backslash escapes.
func splitQuoted(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	escaped := false
	started := false

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			started = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case r == ' ' && !inQuote:
			if started {
				fields = append(fields, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		fields = append(fields, cur.String())
	}
	return fields
}
