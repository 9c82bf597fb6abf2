// Package command parses player command lines and renders game events.
//
// The grammar is line based:
//
//	JOIN <name>
//	POS <SUBMARINE|FRIGATE|DESTROYER> <x 1-8> <y 1-8> <H|V>
//	READY
//	FIRE <x 1-8> <y 1-8>
//
// Verbs, ship types and orientations are case-insensitive and the classic
// Portuguese ship names (SUBMARINO, FRAGATA) are accepted. Coordinates are
// validated and converted to 0-based before the engine sees them.
//
// An Interpreter binds one engine.Engine to one config.Catalog. Execute
// returns the replies produced by a line: acknowledgements and broadcasts
// on success, or one rejection for the sender. Classify groups rejections
// into protocol, phase and rule errors.
package command
