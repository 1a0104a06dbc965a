package core

import "sort"

// ChannelSet is a set of channel identifiers. The zero value is not usable;
// construct with NewChannelSet.
type ChannelSet map[string]struct{}

// NewChannelSet builds a set from the given ids. Duplicates collapse.
func NewChannelSet(ids ...string) ChannelSet {
	s := make(ChannelSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s ChannelSet) Add(id string) { s[id] = struct{}{} }

// Has reports whether id is a member.
func (s ChannelSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s ChannelSet) Len() int { return len(s) }

// Slice returns the members in ascending order.
func (s ChannelSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Difference returns the members of s absent from other, in ascending order.
// A nil other is treated as empty.
func (s ChannelSet) Difference(other ChannelSet) []string {
	out := make([]string, 0)
	for id := range s {
		if !other.Has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
