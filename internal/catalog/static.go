package catalog

import (
	"context"
	"sync"
)

// StaticProvider serves a fixed catalog from memory. Standalone mode hands
// every player the same starter deck; tests register their own cards and
// decks.
type StaticProvider struct {
	mu          sync.RWMutex
	cards       map[string]*Card
	decks       map[string]*Deck // keyed by player ID
	starterDeck []DeckEntry
}

// NewStaticProvider builds an empty provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		cards: make(map[string]*Card),
		decks: make(map[string]*Deck),
	}
}

// NewStarterProvider builds a provider preloaded with the starter set and a
// shared starter deck handed to any player without a registered deck.
func NewStarterProvider() *StaticProvider {
	p := NewStaticProvider()
	for _, c := range starterSet {
		card := c
		p.cards[card.ID] = &card
	}
	p.starterDeck = starterDeckList
	return p
}

// AddCard registers a catalog card.
func (p *StaticProvider) AddCard(c Card) {
	p.mu.Lock()
	defer p.mu.Unlock()
	card := c
	p.cards[card.ID] = &card
}

// SetDeck registers a player's deck.
func (p *StaticProvider) SetDeck(d Deck) {
	p.mu.Lock()
	defer p.mu.Unlock()
	deck := d
	p.decks[deck.PlayerID] = &deck
}

func (p *StaticProvider) ActiveDeck(_ context.Context, playerID string) (*Deck, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if d, ok := p.decks[playerID]; ok {
		if !d.Active {
			return nil, ErrDeckInactive
		}
		deck := *d
		return &deck, nil
	}
	if p.starterDeck != nil {
		return &Deck{
			ID:       "starter-" + playerID,
			PlayerID: playerID,
			Active:   true,
			Entries:  p.starterDeck,
		}, nil
	}
	return nil, ErrDeckNotFound
}

func (p *StaticProvider) Card(_ context.Context, cardID string) (*Card, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.cards[cardID]
	if !ok {
		return nil, ErrCardNotFound
	}
	card := *c
	return &card, nil
}

// starterSet is the built-in catalog used when no external catalog service
// is wired in.
var starterSet = []Card{
	{ID: "kn-pegasus", Name: "Pegasus Vanguard", Type: TypeKnight, Cost: 2, Attack: 50, Defense: 30, Health: 60},
	{ID: "kn-dragon", Name: "Dragon Sentinel", Type: TypeKnight, Cost: 3, Attack: 40, Defense: 60, Health: 80},
	{ID: "kn-cygnus", Name: "Cygnus Striker", Type: TypeKnight, Cost: 4, Attack: 70, Defense: 40, Health: 70},
	{ID: "kn-phoenix", Name: "Phoenix Warden", Type: TypeKnight, Cost: 5, Attack: 90, Defense: 50, Health: 90},
	{ID: "kn-andromeda", Name: "Andromeda Binder", Type: TypeKnight, Cost: 3, Attack: 45, Defense: 55, Health: 75},
	{ID: "sp-chain", Name: "Nebula Chain", Type: TypeSupport, Cost: 1, Attack: 0, Defense: 20, Health: 30},
	{ID: "sp-shield", Name: "Aegis Shield", Type: TypeSupport, Cost: 2, Attack: 0, Defense: 40, Health: 40},
	{ID: "tq-meteor", Name: "Meteor Volley", Type: TypeTechnique, Cost: 3, Attack: 60, Defense: 0, Health: 20},
	{ID: "tq-lightning", Name: "Lightning Bolt Fist", Type: TypeTechnique, Cost: 4, Attack: 80, Defense: 0, Health: 20},
	{ID: "hp-oracle", Name: "Sanctuary Oracle", Type: TypeHelper, Cost: 2, Attack: 0, Defense: 10, Health: 50},
}

var starterDeckList = []DeckEntry{
	{CardID: "kn-pegasus", Count: 3},
	{CardID: "kn-dragon", Count: 3},
	{CardID: "kn-cygnus", Count: 2},
	{CardID: "kn-phoenix", Count: 1},
	{CardID: "kn-andromeda", Count: 2},
	{CardID: "sp-chain", Count: 3},
	{CardID: "sp-shield", Count: 2},
	{CardID: "tq-meteor", Count: 2},
	{CardID: "tq-lightning", Count: 1},
	{CardID: "hp-oracle", Count: 1},
}
