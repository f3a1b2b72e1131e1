package match

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectUnmarshalKnownKind(t *testing.T) {
	var e Effect
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"stat_buff","stat_buff":{"attack":2,"duration":3}}`), &e))
	assert.Equal(t, EffectKindStatBuff, e.Kind)
	require.NotNil(t, e.StatBuff)
	assert.Equal(t, 2, e.StatBuff.Attack)
	assert.Equal(t, 3, e.StatBuff.Duration)
}

func TestEffectUnmarshalUnknownKindRoundTrips(t *testing.T) {
	raw := `{"kind":"time_warp","charges":2}`
	var e Effect
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, EffectKindUnknown, e.Kind)
	assert.JSONEq(t, raw, string(e.Raw), "unknown payloads survive verbatim")
}

func TestCardInstanceCloneIsDeep(t *testing.T) {
	orig := &CardInstance{
		ID: "c-1", Owner: 1, Zone: ZoneKnight,
		Modifiers: []Effect{{
			Kind:     EffectKindStatBuff,
			StatBuff: &StatBuff{Attack: 2, Duration: 1},
		}},
	}
	dup := orig.Clone()
	dup.Modifiers[0].StatBuff.Attack = 99
	assert.Equal(t, 2, orig.Modifiers[0].StatBuff.Attack, "clone must not share effect pointers")
}

func TestMatchCloneIsDeep(t *testing.T) {
	m := &Match{ID: "m-1", Player1ID: "alice", Player2ID: "bob"}
	m.Players[0].DrawOrder = []string{"c-1", "c-2"}

	dup := m.Clone()
	dup.Players[0].DrawOrder[0] = "tampered"
	assert.Equal(t, "c-1", m.Players[0].DrawOrder[0])
}
