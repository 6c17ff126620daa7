package room

import "ctchen222/morpion/internal/game"

// slotOf returns the slot index held by playerID, or -1.
func (r *Room) slotOf(playerID string) int {
	for i, p := range r.slots {
		if p != nil && p.id == playerID {
			return i
		}
	}
	return -1
}

// markForSlot maps the host to X and the guest to O.
func markForSlot(slot int) game.PlayerMark {
	if slot == 0 {
		return game.PlayerX
	}
	return game.PlayerO
}
