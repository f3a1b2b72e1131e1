package match

// Zone and resource accounting. Every mutation here operates on the loaded
// aggregate; callers validate first and commit the whole action atomically.

// ZoneCount returns how many of the given player's instances occupy a zone.
func ZoneCount(cards []*CardInstance, player int, zone Zone) int {
	n := 0
	for _, c := range cards {
		if c.Owner == player && c.Zone == zone {
			n++
		}
	}
	return n
}

// CardsInZone returns the given player's instances in a zone, in slice order.
func CardsInZone(cards []*CardInstance, player int, zone Zone) []*CardInstance {
	var out []*CardInstance
	for _, c := range cards {
		if c.Owner == player && c.Zone == zone {
			out = append(out, c)
		}
	}
	return out
}

// FindCard locates an instance by ID.
func FindCard(cards []*CardInstance, id string) (*CardInstance, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// NextFreePosition returns the lowest unoccupied slot index in a battlefield
// zone for a player, or -1 when the zone is full.
func NextFreePosition(cards []*CardInstance, player int, zone Zone) int {
	capacity, limited := ZoneCapacity(zone)
	if !limited {
		return 0
	}
	occupied := make(map[int]bool, capacity)
	for _, c := range cards {
		if c.Owner == player && c.Zone == zone {
			occupied[c.Position] = true
		}
	}
	for pos := 0; pos < capacity; pos++ {
		if !occupied[pos] {
			return pos
		}
	}
	return -1
}

// MoveCard places an instance into a zone at the given position. Position is
// only meaningful for battlefield zones and is reset to 0 everywhere else.
func MoveCard(c *CardInstance, zone Zone, position int) {
	c.Zone = zone
	if zone.IsBattlefield() {
		c.Position = position
	} else {
		c.Position = 0
	}
}

// GrantEnergy adds energy to a seat, clamped to the given cap. Energy
// already above the cap (pushed there by effects) is left untouched.
func (m *Match) GrantEnergy(player, amount, cap int) {
	ps := m.Player(player)
	if ps.Energy >= cap {
		return
	}
	ps.Energy += amount
	if ps.Energy > cap {
		ps.Energy = cap
	}
}

// SpendEnergy deducts energy from a seat. Callers must have validated
// sufficiency; the balance is still clamped at zero, never negative.
func (m *Match) SpendEnergy(player, amount int) {
	ps := m.Player(player)
	ps.Energy -= amount
	if ps.Energy < 0 {
		ps.Energy = 0
	}
}

// AdjustLife applies a (possibly negative) delta to a seat's life total,
// clamped at zero.
func (m *Match) AdjustLife(player, delta int) {
	ps := m.Player(player)
	ps.Life += delta
	if ps.Life < 0 {
		ps.Life = 0
	}
}
