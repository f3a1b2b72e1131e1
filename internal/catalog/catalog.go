// Package catalog exposes the read-only card catalog and deck store the
// match core consumes. The catalog is owned by an external service; this
// package only defines the lookup surface and a static implementation used
// for tests and standalone mode.
package catalog

import (
	"context"
	"errors"

	"github.com/cosmoarena/arena-server-go/internal/match"
)

var (
	ErrCardNotFound = errors.New("catalog: card not found")
	ErrDeckNotFound = errors.New("catalog: deck not found")
	ErrDeckInactive = errors.New("catalog: deck is not active")
)

// CardType classifies a catalog card and determines its playable zone.
type CardType string

const (
	TypeKnight    CardType = "knight"
	TypeSupport   CardType = "support"
	TypeHelper    CardType = "helper"
	TypeTechnique CardType = "technique"
)

// Card is the immutable template a card instance is derived from.
type Card struct {
	ID      string
	Name    string
	Type    CardType
	Cost    int
	Attack  int
	Defense int
	Health  int
}

// PlayableZone returns the battlefield sub-zone this card type enters.
func (c *Card) PlayableZone() match.Zone {
	switch c.Type {
	case TypeKnight:
		return match.ZoneKnight
	case TypeHelper:
		return match.ZoneHelper
	default:
		// Support and technique cards share the support row.
		return match.ZoneSupport
	}
}

// DeckEntry is one catalog card with its copy count in a deck.
type DeckEntry struct {
	CardID string
	Count  int
}

// Deck is a player's saved deck list.
type Deck struct {
	ID       string
	PlayerID string
	Active   bool
	Entries  []DeckEntry
}

// Size returns the total number of physical copies in the deck.
func (d *Deck) Size() int {
	n := 0
	for _, e := range d.Entries {
		n += e.Count
	}
	return n
}

// Provider is the external deck/catalog collaborator.
type Provider interface {
	// ActiveDeck returns the player's currently active deck.
	ActiveDeck(ctx context.Context, playerID string) (*Deck, error)
	// Card looks up a catalog card by ID.
	Card(ctx context.Context, cardID string) (*Card, error)
}
