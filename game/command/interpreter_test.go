package command

import (
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/navalbattle/game/config"
	"github.com/wricardo/mcp-training/navalbattle/game/engine"
)

var fleetLines = []string{
	"POS SUBMARINE 1 1 H",
	"POS FRIGATE 2 1 H",
	"POS FRIGATE 3 1 H",
	"POS DESTROYER 4 1 H",
}

func createInterpreter(t *testing.T) (*Interpreter, *engine.Game) {
	t.Helper()
	manager, err := config.NewManager("")
	if err != nil {
		t.Fatalf("Failed to create catalog manager: %v", err)
	}
	game := engine.NewGame()
	for i := 0; i < engine.MaxPlayers; i++ {
		if _, err := game.Seat(); err != nil {
			t.Fatalf("Seat failed: %v", err)
		}
	}
	return NewInterpreter(game, manager.Default()), game
}

func run(t *testing.T, in *Interpreter, id int, lines ...string) []Reply {
	t.Helper()
	var all []Reply
	for _, line := range lines {
		all = append(all, in.Execute(id, line)...)
	}
	return all
}

func findReply(replies []Reply, to int, substr string) bool {
	for _, r := range replies {
		if r.To == to && strings.Contains(r.Text, substr) {
			return true
		}
	}
	return false
}

func startBattle(t *testing.T, in *Interpreter) {
	t.Helper()
	run(t, in, 1, "JOIN alice")
	run(t, in, 2, "JOIN bob")
	run(t, in, 1, fleetLines...)
	run(t, in, 2, fleetLines...)
	run(t, in, 1, "READY")
	replies := run(t, in, 2, "READY")
	if !findReply(replies, engine.Broadcast, "STARTING NAVAL BATTLE") {
		t.Fatalf("Battle did not start: %+v", replies)
	}
}

func TestInterpreter_JoinFlow(t *testing.T) {
	in, game := createInterpreter(t)

	replies := in.Execute(1, "JOIN alice")
	if !findReply(replies, 1, "WELCOME, alice! YOU ARE PLAYER 1") {
		t.Errorf("Expected welcome, got %+v", replies)
	}
	if !findReply(replies, 1, "WAITING FOR ANOTHER PLAYER") {
		t.Errorf("Expected waiting notice, got %+v", replies)
	}

	replies = in.Execute(2, "join bob")
	if !findReply(replies, engine.Broadcast, "PLACEMENT PHASE STARTED") {
		t.Errorf("Expected setup broadcast, got %+v", replies)
	}
	if game.Phase() != engine.Setup {
		t.Errorf("Expected setup phase, got %v", game.Phase())
	}

	replies = in.Execute(1, "JOIN again")
	if len(replies) != 1 || replies[0].To != 1 || !strings.Contains(replies[0].Text, "already joined") {
		t.Errorf("Expected single rejection to player 1, got %+v", replies)
	}
}

func TestInterpreter_BlankLine(t *testing.T) {
	in, _ := createInterpreter(t)
	if replies := in.Execute(1, "   "); len(replies) != 0 {
		t.Errorf("Blank lines must be ignored, got %+v", replies)
	}
}

func TestInterpreter_InvalidCommand(t *testing.T) {
	in, game := createInterpreter(t)
	replies := in.Execute(1, "DANCE")
	if len(replies) != 1 || replies[0].Text != "INVALID COMMAND! JOIN, POS, READY or FIRE" {
		t.Errorf("Unexpected reply %+v", replies)
	}
	if game.Phase() != engine.Lobby {
		t.Error("Invalid command must not change state")
	}
}

func TestInterpreter_Placement(t *testing.T) {
	in, game := createInterpreter(t)
	run(t, in, 1, "JOIN alice")
	run(t, in, 2, "JOIN bob")

	replies := in.Execute(1, "POS FRAGATA 1 1 H")
	if !findReply(replies, 1, "FRIGATE at 1,1 H! (1/4 ships)") {
		t.Errorf("Expected placement ack, got %+v", replies)
	}
	replies = in.Execute(1, "POS FRAGATA 2 1 H")
	if !findReply(replies, 1, "(2/4 ships)") {
		t.Errorf("Expected second frigate ack, got %+v", replies)
	}
	replies = in.Execute(1, "POS FRAGATA 3 1 H")
	if !findReply(replies, 1, "Limit for this ship type reached") {
		t.Errorf("Expected cap rejection, got %+v", replies)
	}

	replies = in.Execute(1, "POS DESTROYER 1 2 V")
	if !findReply(replies, 1, "Invalid or occupied position") {
		t.Errorf("Expected overlap rejection, got %+v", replies)
	}

	replies = in.Execute(1, "READY")
	if !findReply(replies, 1, "Place all ships first! (2/4)") {
		t.Errorf("Expected incomplete fleet rejection, got %+v", replies)
	}

	replies = run(t, in, 1, "POS SUBMARINE 5 5 H", "POS DESTROYER 6 1 H")
	if !findReply(replies, 1, "ALL SHIPS PLACED") {
		t.Errorf("Expected fleet complete notice, got %+v", replies)
	}

	replies = in.Execute(1, "READY")
	if !findReply(replies, engine.Broadcast, "PLAYER 1 (alice) IS READY") {
		t.Errorf("Expected ready broadcast, got %+v", replies)
	}
	if game.Phase() != engine.Setup {
		t.Errorf("Expected setup until both are ready, got %v", game.Phase())
	}
}

func TestInterpreter_Battle(t *testing.T) {
	in, game := createInterpreter(t)
	startBattle(t, in)

	replies := in.Execute(2, "FIRE 1 1")
	if !findReply(replies, 2, "Wait for PLAYER 1 (alice)") {
		t.Errorf("Expected not-your-turn rejection, got %+v", replies)
	}

	replies = in.Execute(1, "FIRE 9 9")
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "Coordinates must be 1 to 8") {
		t.Errorf("Expected coordinate rejection, got %+v", replies)
	}

	replies = in.Execute(1, "FIRE 1 1")
	if !findReply(replies, engine.Broadcast, "PLAYER 1 (alice) FIRED AT 1 1: SUNK") {
		t.Errorf("Expected sunk broadcast, got %+v", replies)
	}
	if !findReply(replies, engine.Broadcast, "TURN OF PLAYER 2 (bob)") {
		t.Errorf("Expected turn broadcast, got %+v", replies)
	}
	if !findReply(replies, 2, "YOUR TURN") || !findReply(replies, 1, "WAIT FOR YOUR OPPONENT") {
		t.Errorf("Expected direct turn prompts, got %+v", replies)
	}

	replies = in.Execute(2, "FIRE 8 8")
	if !findReply(replies, engine.Broadcast, "FIRED AT 8 8: MISS") {
		t.Errorf("Expected miss broadcast, got %+v", replies)
	}

	replies = in.Execute(1, "POS SUBMARINE 8 8 H")
	if !findReply(replies, 1, "Game already started") {
		t.Errorf("Expected started rejection, got %+v", replies)
	}
	if game.Phase() != engine.Battle {
		t.Errorf("Expected battle, got %v", game.Phase())
	}
}

func TestInterpreter_Victory(t *testing.T) {
	in, game := createInterpreter(t)
	startBattle(t, in)

	targets := []string{"FIRE 1 1", "FIRE 2 1", "FIRE 2 2", "FIRE 3 1", "FIRE 3 2", "FIRE 4 1", "FIRE 4 2", "FIRE 4 3"}
	var last []Reply
	for i, target := range targets {
		last = in.Execute(1, target)
		if i < len(targets)-1 {
			in.Execute(2, "FIRE 8 8")
		}
	}

	if !findReply(last, 1, "CONGRATULATIONS alice (PLAYER 1)! YOU WON!") {
		t.Errorf("Expected victory to player 1, got %+v", last)
	}
	if !findReply(last, 2, "bob (PLAYER 2) LOST!") {
		t.Errorf("Expected defeat to player 2, got %+v", last)
	}
	if !findReply(last, engine.Broadcast, "GAME OVER") {
		t.Errorf("Expected game over broadcast, got %+v", last)
	}
	if game.Snapshot().Winner != 1 {
		t.Errorf("Expected winner 1, got %d", game.Snapshot().Winner)
	}

	replies := in.Execute(2, "FIRE 1 1")
	if !findReply(replies, 2, "The game is over") {
		t.Errorf("Expected game over rejection, got %+v", replies)
	}
}

func TestInterpreter_PortugueseCatalog(t *testing.T) {
	manager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	catalog, err := manager.Load("pt_br")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	game := engine.NewGame()
	game.Seat()
	in := NewInterpreter(game, catalog)

	replies := in.Execute(1, "JOIN ana")
	if !findReply(replies, 1, "=== BEM-VINDO, ana! VOCÊ É O PLAYER 1 ===") {
		t.Errorf("Expected Portuguese welcome, got %+v", replies)
	}
	replies = in.Execute(1, "POS FRAGATA 1 1 H")
	if !findReply(replies, 1, "Posicionamento não iniciado") {
		t.Errorf("Expected Portuguese phase rejection, got %+v", replies)
	}
}

func TestInterpreter_Message(t *testing.T) {
	in, _ := createInterpreter(t)
	reply := in.Message(3, config.Key("missing"), config.Data{})
	if reply.To != 3 || reply.Text != "missing" {
		t.Errorf("Expected key fallback, got %+v", reply)
	}
}
