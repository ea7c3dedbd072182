package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftEffect_Receiver(t *testing.T) {
	tests := []struct {
		name      string
		drafter   int
		players   int
		direction PassDirection
		want      int
	}{
		{"left", 0, 3, PassLeft, 1},
		{"left wraps", 2, 3, PassLeft, 0},
		{"right", 1, 3, PassRight, 0},
		{"right wraps", 0, 3, PassRight, 2},
		{"two players", 1, 2, PassRight, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := &DraftEffect{Drafter: tt.drafter, NumPlayers: tt.players, Direction: tt.direction}
			assert.Equal(t, tt.want, fx.Receiver())
		})
	}
}

func TestReshuffleReceiverHand(t *testing.T) {
	deck := NewDeckWithCards(Cards{LycheeTea: 10})
	hands := []Cards{
		{MangoTea: 1},
		{ThaiTea: 2, MatchaTea: 1},
		{DrinkTray: 1},
	}
	fx := &DraftEffect{
		Drafter:    0,
		NumPlayers: 3,
		Direction:  PassLeft,
		Hands:      hands,
		Deck:       deck,
		Rng:        newRNG(11),
	}

	require.NoError(t, reshuffleReceiverHand(fx))

	assert.Equal(t, 3, hands[1].Total(), "接收者手牌张数不变")
	assert.Equal(t, 10, deck.Size(), "放回多少就抽多少")
	assert.Equal(t, Cards{MangoTea: 1}, hands[0])
	assert.Equal(t, Cards{DrinkTray: 1}, hands[2])
}

func TestReshuffleReceiverHand_EmptyHand(t *testing.T) {
	deck := NewDeckWithCards(Cards{LycheeTea: 4})
	hands := []Cards{{}, {}}
	fx := &DraftEffect{Drafter: 1, NumPlayers: 2, Direction: PassRight, Hands: hands, Deck: deck, Rng: newRNG(1)}

	require.NoError(t, reshuffleReceiverHand(fx))
	assert.True(t, hands[0].IsEmpty())
	assert.Equal(t, 4, deck.Size())
}

func TestReshuffleReceiverHand_BadContext(t *testing.T) {
	fx := &DraftEffect{Drafter: 0, NumPlayers: 3, Hands: []Cards{{}}, Deck: NewDeck(), Rng: newRNG(1)}
	assert.Error(t, reshuffleReceiverHand(fx))
}
