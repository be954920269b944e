// Package wire implements the iChat datagram framing: each UDP payload
// carries a single `command$content` frame. Commands are case-sensitive
// ASCII tokens; content may be empty and may contain newlines.
package wire

import (
	"bytes"
	"strings"
	"unicode"
)

// Wire-protocol constants.
const (
	// BufferSize is the datagram receive buffer. A payload that fills the
	// whole buffer cannot be distinguished from a truncated one, so the
	// largest accepted frame is one byte shorter.
	BufferSize = 1024
	MaxPayload = BufferSize - 1

	// MaxNameLen is the maximum length of a display name in bytes.
	MaxNameLen = 50

	// ServerPort is the well-known chat port.
	ServerPort = 9999

	// AdminPort is the client source port that grants admin rights at
	// conn time.
	AdminPort = 6666

	// Sep splits the command from the content.
	Sep = '$'
)

// Client-to-server commands.
const (
	CmdConn    = "conn"
	CmdSay     = "say"
	CmdSayTo   = "sayto"
	CmdDisconn = "disconn"
	CmdMute    = "mute"
	CmdUnmute  = "unmute"
	CmdRename  = "rename"
	CmdKick    = "kick"
	CmdRetPing = "ret-ping"
)

// Server-to-client commands. conn, rename, disconn and kick double as
// acknowledgement frames in the other direction.
const (
	CmdPing    = "ping"
	CmdHistory = "history"
	CmdError   = "Error"
)

// Parse splits a frame into its command and content. Both parts are
// whitespace-trimmed; the payload itself is not modified. Oversize payloads
// are rejected here rather than truncated.
func Parse(payload []byte) (cmd, content string, err error) {
	if len(payload) > MaxPayload {
		return "", "", ErrOversize
	}
	i := bytes.IndexByte(payload, Sep)
	if i < 0 {
		return "", "", ErrNoSeparator
	}
	cmd = strings.TrimSpace(string(payload[:i]))
	if cmd == "" {
		return "", "", ErrEmptyCommand
	}
	content = strings.TrimSpace(string(payload[i+1:]))
	return cmd, content, nil
}

// Format assembles a frame payload. The content is emitted verbatim, so
// callers control leading spaces and trailing newlines.
func Format(cmd, content string) ([]byte, error) {
	if cmd == "" {
		return nil, ErrEmptyCommand
	}
	if strings.ContainsRune(cmd, Sep) {
		return nil, ErrBadCommand
	}
	b := make([]byte, 0, len(cmd)+1+len(content))
	b = append(b, cmd...)
	b = append(b, Sep)
	b = append(b, content...)
	if len(b) > MaxPayload {
		return nil, ErrOversize
	}
	return b, nil
}

// ValidateName checks a display name for conn and rename. Names must be
// nonempty, at most MaxNameLen bytes, and free of '$' (frame separator),
// ',' (name-list separator) and whitespace (sender-colon framing).
func ValidateName(name string) error {
	switch {
	case name == "":
		return ErrNameEmpty
	case len(name) > MaxNameLen:
		return ErrNameTooLong
	}
	if strings.ContainsAny(name, "$,") || strings.ContainsFunc(name, unicode.IsSpace) {
		return ErrNameForbidden
	}
	return nil
}
