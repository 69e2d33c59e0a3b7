package main

import (
	"context"
	"testing"
	"time"

	"github.com/avvvet/onecard-services/internal/comm"
	"github.com/avvvet/onecard-services/internal/onecard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotIDs(t *testing.T) {
	assert.Equal(t, []string{"bot-1", "bot-2", "bot-3"}, robotIDs(3, "bot"))
	assert.Empty(t, robotIDs(0, "bot"))
}

func TestIsCode(t *testing.T) {
	err := &onecard.Error{Code: "P002", Message: "player id already exists"}
	assert.True(t, isCode(err, onecard.ErrPlayerIDDuplicated.Code))
	assert.False(t, isCode(err, onecard.ErrPlayerNotFound.Code))
	assert.False(t, isCode(assert.AnError, onecard.ErrPlayerIDDuplicated.Code))
}

func contextWithTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)
	return ctx
}

func view(players ...string) comm.GameInfo {
	g, err := onecard.NewGame(players, nil)
	if err != nil {
		panic(err)
	}
	return onecard.Project(g, players[0])
}

func TestCheckViewAcceptsDealtView(t *testing.T) {
	r := &robot{id: "a", views: make(chan comm.GameInfo, 1)}
	r.views <- view("a", "b")

	require.NoError(t, r.checkView(contextWithTimeout(t), 2))
}

func TestCheckViewRejectsWrongTable(t *testing.T) {
	r := &robot{id: "a", views: make(chan comm.GameInfo, 1)}
	r.views <- view("a", "b", "c")

	assert.Error(t, r.checkView(contextWithTimeout(t), 2))
}
