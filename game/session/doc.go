// Package session connects transport peers to naval battle matches.
//
// A Manager owns every Match hosted by the process. Transports hand each
// new connection to Manager.Attach as a Peer and get back a Seat, the
// player's handle for the rest of the connection:
//
//	seat, err := manager.Attach(peer)
//	if err != nil {
//		return // peer was told the server is full and closed
//	}
//	defer seat.Leave()
//	for line := range lines {
//		seat.Handle(line)
//	}
//
// Peers are paired in arrival order. The first peer creates a match and
// the second one is seated in it. Once a match is full, further peers
// start a new match while fewer than the configured maximum are running,
// and are rejected otherwise.
//
// Concurrency:
//
// Commands from both seats of a match are executed one at a time and their
// replies are delivered before the next command runs, so both players see
// messages in the same order. Delivery never blocks: a peer whose queue is
// full is dropped and closed.
//
// When a match finishes, by victory or because every player left, its
// result is written to the results store once and the remaining peers are
// closed. Finished matches stay listed until CleanupFinished removes them.
package session
