package match

import (
	"encoding/json"
	"fmt"
)

// EffectKind tags the variants of Effect.
type EffectKind string

const (
	EffectKindStatBuff      EffectKind = "stat_buff"
	EffectKindStatusAilment EffectKind = "status_ailment"
	EffectKindEnergySurge   EffectKind = "energy_surge"
	// EffectKindUnknown preserves effect payloads this server version does
	// not understand, so newer clients' data round-trips intact.
	EffectKindUnknown EffectKind = "unknown"
)

// StatBuff raises or lowers a card's snapshot stats for a number of turns.
// Duration 0 means permanent.
type StatBuff struct {
	Attack   int `json:"attack"`
	Defense  int `json:"defense"`
	Health   int `json:"health"`
	Duration int `json:"duration"`
}

// StatusAilment is a named condition on a card (e.g. "stunned").
type StatusAilment struct {
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

// EnergySurge grants its controller energy beyond the turn grant, limited
// by the match energy ceiling when applied.
type EnergySurge struct {
	Amount int `json:"amount"`
}

// Effect is a tagged variant; exactly one payload field matching Kind is
// set. Unknown kinds carry their raw payload for forward compatibility.
type Effect struct {
	Kind          EffectKind      `json:"kind"`
	StatBuff      *StatBuff       `json:"stat_buff,omitempty"`
	StatusAilment *StatusAilment  `json:"status_ailment,omitempty"`
	EnergySurge   *EnergySurge    `json:"energy_surge,omitempty"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// UnmarshalJSON decodes known variants strictly and demotes anything else
// to EffectKindUnknown instead of failing.
func (e *Effect) UnmarshalJSON(data []byte) error {
	type alias Effect
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decode effect: %w", err)
	}
	switch a.Kind {
	case EffectKindStatBuff, EffectKindStatusAilment, EffectKindEnergySurge:
		*e = Effect(a)
	default:
		*e = Effect{Kind: EffectKindUnknown, Raw: append(json.RawMessage(nil), data...)}
	}
	return nil
}

func cloneEffects(effects []Effect) []Effect {
	if effects == nil {
		return nil
	}
	out := make([]Effect, len(effects))
	for i, e := range effects {
		c := e
		if e.StatBuff != nil {
			buff := *e.StatBuff
			c.StatBuff = &buff
		}
		if e.StatusAilment != nil {
			ailment := *e.StatusAilment
			c.StatusAilment = &ailment
		}
		if e.EnergySurge != nil {
			surge := *e.EnergySurge
			c.EnergySurge = &surge
		}
		if e.Raw != nil {
			c.Raw = append(json.RawMessage(nil), e.Raw...)
		}
		out[i] = c
	}
	return out
}
