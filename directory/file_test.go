package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFile_LiveChannelIDs(t *testing.T) {
	path := writeExport(t, `
guild_id: "42"
channels:
  - "100"
  - id: "200"
    name: general
  - "100"
`)
	f := NewFile(path)

	live, err := f.LiveChannelIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200"}, live.Slice())

	exp, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, "42", exp.GuildID)
	assert.Equal(t, "general", exp.Channels[1].Name)
}

func TestFile_RereadsOnEachCall(t *testing.T) {
	path := writeExport(t, "channels: [\"1\"]\n")
	f := NewFile(path)

	live, err := f.LiveChannelIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, live.Slice())

	require.NoError(t, os.WriteFile(path, []byte("channels: [\"2\", \"3\"]\n"), 0o600))
	live, err = f.LiveChannelIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, live.Slice())
}

func TestFile_EmptyExport(t *testing.T) {
	live, err := NewFile(writeExport(t, "channels: []\n")).LiveChannelIDs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, live.Len())
}

func TestFile_Errors(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.yaml")).LiveChannelIDs(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewFile(writeExport(t, "channels: {broken")).LiveChannelIDs(context.Background())
	assert.Error(t, err)

	_, err = NewFile(writeExport(t, "channels:\n  - name: no-id\n")).LiveChannelIDs(context.Background())
	assert.ErrorContains(t, err, "has no id")
}
