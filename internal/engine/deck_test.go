package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeck_DrawWithoutInitialDistribution(t *testing.T) {
	d := NewDeck()
	d.Add(ThaiTea, 2)
	rng := newRNG(1)

	for i := 0; i < 2; i++ {
		card, ok := d.Draw(rng)
		require.True(t, ok)
		assert.Equal(t, ThaiTea, card)
		assert.Equal(t, 1-i, d.Size())
	}

	_, ok := d.Draw(rng)
	assert.False(t, ok, "没有初始分布时空牌堆不能抽牌")
	assert.Equal(t, 0, d.Size())
}

func TestDeck_DrawsExactDistribution(t *testing.T) {
	dist := Cards{ThaiTea: 3, MangoTea: 5, DrinkTray: 2}
	d := NewDeckWithCards(dist)
	rng := newRNG(7)

	drawn := make(Cards)
	for d.Size() > 0 {
		before := d.Size()
		card, ok := d.Draw(rng)
		require.True(t, ok)
		assert.Equal(t, before-1, d.Size())
		drawn.Add(card, 1)
	}
	assert.True(t, dist.Equal(drawn), "抽空牌堆应恰好得到初始分布: %v", drawn)
}

func TestDeck_ReshuffleRestoresInitial(t *testing.T) {
	d := NewDeckWithCards(Cards{LycheeTea: 2})
	rng := newRNG(3)

	d.Draw(rng)
	d.Draw(rng)
	require.Equal(t, 0, d.Size())

	card, ok := d.Draw(rng)
	require.True(t, ok)
	assert.Equal(t, LycheeTea, card)
	assert.Equal(t, 1, d.Size(), "重洗后恢复 2 张再抽走 1 张")
}

func TestDeck_ReshuffleIgnoresExtensions(t *testing.T) {
	d := NewDeckWithCards(Cards{LycheeTea: 1})
	rng := newRNG(3)

	d.Draw(rng)
	d.Extend(MatchaTea)
	card, ok := d.Draw(rng)
	require.True(t, ok)
	assert.Equal(t, MatchaTea, card)

	// 再次抽空后回到初始分布，而不是回收放回过的牌
	card, ok = d.Draw(rng)
	require.True(t, ok)
	assert.Equal(t, LycheeTea, card)
	assert.Equal(t, 0, d.Count(MatchaTea))
}

func TestDeck_SameSeedSameSequence(t *testing.T) {
	a := NewDeckWithCards(DefaultDistribution())
	b := NewDeckWithCards(DefaultDistribution())
	ra, rb := newRNG(99), newRNG(99)

	for i := 0; i < 60; i++ {
		ca, _ := a.Draw(ra)
		cb, _ := b.Draw(rb)
		require.Equal(t, ca, cb, "第 %d 次抽牌不一致", i)
	}
}

func TestDeck_AddIgnoresInvalid(t *testing.T) {
	d := NewDeck()
	d.Add(CardKind(50), 3)
	d.Add(ThaiTea, -1)
	assert.Equal(t, 0, d.Size())
	assert.False(t, d.HasInitialDistribution())
}
