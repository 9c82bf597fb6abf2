// Package websocket lets players connect over WebSocket instead of a raw
// TCP line connection.
//
// The protocol is the same line protocol the TCP transport speaks: every
// line of an inbound text frame is one command (JOIN, POS, READY, FIRE) and every
// outbound line is sent as its own text frame. There is no JSON envelope.
//
// A central Hub seats each upgraded connection through the session manager
// and tracks live clients per match. Each client runs a read pump that
// feeds commands to its seat and a write pump that drains a bounded queue
// and keeps the connection alive with pings.
//
// Usage:
//
//	hub := websocket.NewHub(sessions, logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", hub.ServeWS)
package websocket
