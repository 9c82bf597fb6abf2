package service

import (
	"time"

	"github.com/wricardo/mcp-training/navalbattle/game/engine"
)

// MatchInfo provides information about a hosted match
type MatchInfo struct {
	ID         string                `json:"id"`
	Phase      engine.Phase          `json:"phase"`
	CreatedAt  time.Time             `json:"created_at"`
	StartedAt  *time.Time            `json:"started_at,omitempty"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
	Winner     string                `json:"winner,omitempty"`
	Players    []engine.PlayerStatus `json:"players"`
}

// RulesInfo describes the board, the fleet and the command set
type RulesInfo struct {
	BoardSize int           `json:"board_size"`
	FleetSize int           `json:"fleet_size"`
	Ships     []ShipRule    `json:"ships"`
	Commands  []CommandInfo `json:"commands"`
}

// ShipRule is one vessel class of the fleet
type ShipRule struct {
	Type  string `json:"type"`
	Size  int    `json:"size"`
	Limit int    `json:"limit"`
}

// CommandInfo documents one line command
type CommandInfo struct {
	Name  string `json:"name"`
	Usage string `json:"usage"`
	Phase string `json:"phase"`
}
