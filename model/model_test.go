package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveModel(t *testing.T) {
	name, err := ResolveModel("", "a", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "a", name)

	name, err = ResolveModel("b", "a", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", name)

	_, err = ResolveModel("c", "a", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrUnknownModel)

	name, err = ResolveModel("anything", "a", nil)
	require.NoError(t, err)
	assert.Equal(t, "anything", name)
}

func TestMockGenerator(t *testing.T) {
	ctx := context.Background()
	g := NewMockGenerator("small", "large")
	g.AddResponse("ping", "pong")

	resp, err := g.Generate(ctx, Request{Messages: []Message{{Role: "user", Content: "ping"}}})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
	assert.Equal(t, "small", resp.Model)

	resp, err = g.Generate(ctx, Request{Model: "large", Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hi", resp.Content)
	assert.Equal(t, "large", resp.Model)

	_, err = g.Generate(ctx, Request{Model: "huge", Messages: []Message{{Role: "user", Content: "hi"}}})
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, err = g.Generate(ctx, Request{})
	assert.ErrorIs(t, err, ErrNoMessages)

	assert.Len(t, g.Requests(), 3)
	assert.True(t, g.ValidateModel("large"))
	assert.False(t, g.ValidateModel("huge"))
	assert.Equal(t, []string{"small", "large"}, g.Models())
	assert.Equal(t, Info{Name: "small", Provider: "mock"}, g.Info())
}

func TestMockGenerator_Failure(t *testing.T) {
	g := NewMockGenerator()
	boom := errors.New("rate limited")
	g.FailWith(boom)

	_, err := g.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}})
	assert.ErrorIs(t, err, boom)

	g.FailWith(nil)
	_, err = g.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, Request{Messages: []Message{{Role: "user", Content: "x"}}})
	assert.ErrorIs(t, err, context.Canceled)
}
