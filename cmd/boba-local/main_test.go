package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/session"
)

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitNames(" a, b,,c "))
	assert.Nil(t, splitNames(""))
}

func TestRun_PlaysFullGame(t *testing.T) {
	s, err := session.New("local", engine.Config{
		PlayerNames:  []string{"alice", "bob"},
		Seed:         engine.SeedPtr(1),
		Distribution: engine.Cards{engine.ThaiTea: 40},
		RoundCount:   1,
	}, session.Options{})
	require.NoError(t, err)
	s.Start(context.Background())

	// 一轮 10 回合，两人每回合都选第一张；中间夹一条错误输入
	input := "9\n" + strings.Repeat("1\n", 20)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), s, strings.NewReader(input), &out))

	ended, ok := s.Ended()
	require.True(t, ok)
	assert.Equal(t, "completed", string(ended.Reason.Kind))
	assert.Contains(t, out.String(), "! no card #9")
	assert.Contains(t, out.String(), "alice (player 0): 17")
}

func TestRun_QuitEndsGame(t *testing.T) {
	s, err := session.New("local", engine.Config{PlayerNames: []string{"a", "b"}}, session.Options{})
	require.NoError(t, err)
	s.Start(context.Background())

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), s, strings.NewReader("quit\n"), &out))

	ended, ok := s.Ended()
	require.True(t, ok)
	assert.Equal(t, "player_disconnected", string(ended.Reason.Kind))
	assert.Contains(t, out.String(), "player_disconnected(0)")
}
