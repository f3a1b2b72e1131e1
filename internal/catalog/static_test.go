package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

func TestPlayableZone(t *testing.T) {
	for _, tc := range []struct {
		cardType CardType
		zone     match.Zone
	}{
		{TypeKnight, match.ZoneKnight},
		{TypeHelper, match.ZoneHelper},
		{TypeSupport, match.ZoneSupport},
		{TypeTechnique, match.ZoneSupport},
	} {
		c := Card{ID: "x", Type: tc.cardType}
		assert.Equal(t, tc.zone, c.PlayableZone(), "type %s", tc.cardType)
	}
}

func TestStaticProviderLookups(t *testing.T) {
	ctx := context.Background()
	p := NewStaticProvider()
	p.AddCard(Card{ID: "kn-1", Type: TypeKnight, Cost: 2, Attack: 40, Defense: 30, Health: 60})

	got, err := p.Card(ctx, "kn-1")
	require.NoError(t, err)
	assert.Equal(t, 40, got.Attack)

	_, err = p.Card(ctx, "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = p.ActiveDeck(ctx, "alice")
	assert.ErrorIs(t, err, ErrDeckNotFound, "no starter deck on a bare provider")
}

func TestStaticProviderInactiveDeck(t *testing.T) {
	ctx := context.Background()
	p := NewStaticProvider()
	p.SetDeck(Deck{ID: "d-1", PlayerID: "alice", Active: false})

	_, err := p.ActiveDeck(ctx, "alice")
	assert.ErrorIs(t, err, ErrDeckInactive)
}

func TestStarterProviderFallbackDeck(t *testing.T) {
	ctx := context.Background()
	p := NewStarterProvider()

	deck, err := p.ActiveDeck(ctx, "newcomer")
	require.NoError(t, err)
	assert.True(t, deck.Active)
	assert.Equal(t, 20, deck.Size())

	// Every entry resolves against the built-in catalog.
	for _, e := range deck.Entries {
		_, err := p.Card(ctx, e.CardID)
		assert.NoError(t, err, "starter card %s", e.CardID)
	}
}
