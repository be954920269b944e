package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		cmd     string
		content string
		err     error
	}{
		{"simple", "conn$Alice", "conn", "Alice", nil},
		{"empty content", "disconn$", "disconn", "", nil},
		{"trims both sides", "  say $  hello world \n", "say", "hello world", nil},
		{"separator in content", "Error$ use 'conn$<name>'", "Error", "use 'conn$<name>'", nil},
		{"newline in content", "say$line1\nline2", "say", "line1\nline2", nil},
		{"no separator", "conn Alice", "", "", ErrNoSeparator},
		{"empty command", "$hello", "", "", ErrEmptyCommand},
		{"whitespace command", "  $hello", "", "", ErrEmptyCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, content, err := Parse([]byte(tt.payload))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.content, content)
		})
	}
}

func TestParseSizeBoundary(t *testing.T) {
	// MaxPayload bytes are accepted, one more is rejected.
	ok := "say$" + strings.Repeat("a", MaxPayload-len("say$"))
	require.Len(t, ok, MaxPayload)
	cmd, content, err := Parse([]byte(ok))
	require.NoError(t, err)
	assert.Equal(t, "say", cmd)
	assert.Len(t, content, MaxPayload-len("say$"))

	_, _, err = Parse([]byte(ok + "a"))
	require.ErrorIs(t, err, ErrOversize)
}

func TestFormat(t *testing.T) {
	payload, err := Format("conn", " Hi Alice, welcome\n")
	require.NoError(t, err)
	assert.Equal(t, "conn$ Hi Alice, welcome\n", string(payload))

	_, err = Format("", "x")
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = Format("con$n", "x")
	assert.ErrorIs(t, err, ErrBadCommand)

	_, err = Format("say", strings.Repeat("a", MaxPayload))
	assert.ErrorIs(t, err, ErrOversize)
}

func TestParseFormatRoundTrip(t *testing.T) {
	tests := []struct{ cmd, content string }{
		{"conn", "Alice"},
		{"say", "hello there"},
		{"disconn", ""},
		{"ret-ping", ""},
		{"sayto", "Bob hi"},
	}
	for _, tt := range tests {
		payload, err := Format(tt.cmd, tt.content)
		require.NoError(t, err)
		cmd, content, err := Parse(payload)
		require.NoError(t, err)
		assert.Equal(t, tt.cmd, cmd)
		assert.Equal(t, tt.content, content)
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Alice"))
	assert.NoError(t, ValidateName("user-42_x"))
	assert.NoError(t, ValidateName(strings.Repeat("a", MaxNameLen)))

	assert.ErrorIs(t, ValidateName(""), ErrNameEmpty)
	assert.ErrorIs(t, ValidateName(strings.Repeat("a", MaxNameLen+1)), ErrNameTooLong)
	assert.ErrorIs(t, ValidateName("Al ice"), ErrNameForbidden)
	assert.ErrorIs(t, ValidateName("Al$ice"), ErrNameForbidden)
	assert.ErrorIs(t, ValidateName("Al,ice"), ErrNameForbidden)
	assert.ErrorIs(t, ValidateName("Al\tice"), ErrNameForbidden)
	assert.ErrorIs(t, ValidateName("Al\nice"), ErrNameForbidden)
}
