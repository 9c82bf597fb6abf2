package engine

// checkRoster enforces the per-type roster cap
func checkRoster(p *Player, t ShipType) error {
	if !t.Valid() {
		return ErrInvalidShipType
	}
	if p.Board.CountShips(t) >= t.Limit() {
		return ErrShipLimit
	}
	return nil
}

// fleetComplete reports whether p placed exactly the full roster
func fleetComplete(p *Player) bool {
	if p.Board.ShipsPlaced() != FleetSize {
		return false
	}
	for _, t := range ShipTypes {
		if p.Board.CountShips(t) != t.Limit() {
			return false
		}
	}
	return true
}

// resolveFire fires at the defender's board
func resolveFire(attacker, defender *Player, target Coord) ShotResult {
	attacker.shots++
	return defender.Board.ResolveShot(target)
}

// detectWinner scans boards in slot order. Shots are resolved one at a time
// and turns alternate, so at most one board can be empty on any check.
func detectWinner(players [MaxPlayers]*Player) (winner, loser *Player, ok bool) {
	for i, p := range players {
		if p == nil {
			continue
		}
		if !p.Board.HasSurvivingShip() {
			other := players[1-i]
			return other, p, other != nil
		}
	}
	return nil, nil, false
}

// passTurn hands the turn from one player to the other
func passTurn(from, to *Player) {
	from.hasTurn = false
	to.hasTurn = true
}

// turnEvents announces the holder to both players and prompts each side
func turnEvents(holder, waiter *Player) []Event {
	subject := Event{Player: holder.ID, Name: holder.Name}
	return []Event{
		broadcast(withType(subject, EventTurn)),
		direct(holder.ID, withType(subject, EventYourTurn)),
		direct(waiter.ID, withType(subject, EventWaitTurn)),
	}
}

func withType(e Event, t EventType) Event {
	e.Type = t
	return e
}
