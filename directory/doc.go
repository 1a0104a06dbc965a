// Package directory provides core.ChannelDirectory implementations.
//
// Registry is an in-process set kept current by chat-platform events
// (channel created, deleted, guild ready). File reads a YAML export of the
// platform's channel list on every call and suits one-shot sweeps from the
// command line.
package directory
