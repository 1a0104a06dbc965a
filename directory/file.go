package directory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/chatbridge/core"
)

// Compile-time check
var _ core.ChannelDirectory = (*File)(nil)

// Export is the on-disk layout read by File:
//
//	guild_id: "123"
//	channels:
//	  - "456"
//	  - id: "789"
//	    name: general
type Export struct {
	GuildID  string    `yaml:"guild_id,omitempty"`
	Channels []Channel `yaml:"channels"`
}

// Channel is a single exported channel. A bare scalar is accepted as the id.
type Channel struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

// UnmarshalYAML accepts either a scalar id or a mapping.
func (c *Channel) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.ID = node.Value
		return nil
	}
	type plain Channel
	return node.Decode((*plain)(c))
}

// File is a ChannelDirectory backed by a YAML export. The file is re-read on
// every call.
type File struct {
	Path string
}

// NewFile creates a File directory for path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads and parses the export.
func (f *File) Load() (*Export, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read channel export: %w", err)
	}
	var exp Export
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("parse channel export %s: %w", f.Path, err)
	}
	return &exp, nil
}

// LiveChannelIDs returns the ids listed in the export.
func (f *File) LiveChannelIDs(ctx context.Context) (core.ChannelSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exp, err := f.Load()
	if err != nil {
		return nil, err
	}
	live := core.NewChannelSet()
	for i, ch := range exp.Channels {
		if ch.ID == "" {
			return nil, fmt.Errorf("channel export %s: entry %d has no id", f.Path, i)
		}
		live.Add(ch.ID)
	}
	return live, nil
}
