// Command bruteforcer plays naval battle matches against a running server
// over TCP. It joins, places a random legal fleet and fires using a
// systematic hunt and target strategy. Run two bots to exercise a server
// end to end, or one to play against a human.
//
// The bot understands the classic message catalog.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/navalbattle/game/engine"
)

// Client is a line-oriented connection to the game server
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	idle time.Duration
}

// Dial connects to the game server. Reads fail after idle without traffic.
func Dial(ctx context.Context, addr string, idle time.Duration) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn), idle: idle}, nil
}

// Send writes each line terminated by a newline
func (c *Client) Send(lines ...string) error {
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	for _, line := range lines {
		if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
			return fmt.Errorf("send %q: %w", line, err)
		}
	}
	return nil
}

// ReadLine returns the next line without its terminator
func (c *Client) ReadLine() (string, error) {
	c.conn.SetReadDeadline(time.Now().Add(c.idle))
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Outcome is how a match ended for the bot
type Outcome string

const (
	Won       Outcome = "won"
	Lost      Outcome = "lost"
	Abandoned Outcome = "abandoned"
)

var (
	welcomeRe = regexp.MustCompile(`YOU ARE PLAYER (\d)`)
	shotRe    = regexp.MustCompile(`^=== PLAYER (\d) \(.*\) FIRED AT (\d+) (\d+): (\S+) ===$`)
)

// Bot plays a single match over a Client
type Bot struct {
	Name     string
	client   *Client
	strategy *SystematicStrategy
	fleet    []string
	log      zerolog.Logger

	player  int
	outcome Outcome
}

// NewBot creates a bot that will place fleet and play over client
func NewBot(name string, client *Client, fleet []string, log zerolog.Logger) *Bot {
	return &Bot{
		Name:     name,
		client:   client,
		strategy: NewSystematicStrategy(),
		fleet:    fleet,
		log:      log.With().Str("bot", name).Logger(),
		outcome:  Abandoned,
	}
}

// Play reacts to server messages until the server closes the connection
// or ctx is done
func (b *Bot) Play(ctx context.Context) (Outcome, error) {
	stop := context.AfterFunc(ctx, func() { b.client.Close() })
	defer stop()

	for {
		line, err := b.client.ReadLine()
		if err != nil {
			if ctx.Err() != nil {
				return b.outcome, ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return b.outcome, nil
			}
			return b.outcome, err
		}
		b.log.Trace().Str("line", line).Msg("received")

		if err := b.handle(line); err != nil {
			return b.outcome, err
		}
	}
}

func (b *Bot) handle(line string) error {
	switch {
	case strings.Contains(line, "Type JOIN"):
		return b.client.Send("JOIN " + b.Name)

	case welcomeRe.MatchString(line):
		b.player, _ = strconv.Atoi(welcomeRe.FindStringSubmatch(line)[1])

	case strings.Contains(line, "PLACE YOUR SHIPS"):
		return b.client.Send(b.fleet...)

	case strings.Contains(line, "ALL SHIPS PLACED"):
		return b.client.Send("READY")

	case strings.Contains(line, "YOUR TURN!"):
		c, ok := b.strategy.NextShot()
		if !ok {
			return errors.New("no cells left to fire at")
		}
		x, y := c.Human()
		return b.client.Send(fmt.Sprintf("FIRE %d %d", x, y))

	case shotRe.MatchString(line):
		b.recordShot(shotRe.FindStringSubmatch(line))

	case strings.Contains(line, "YOU WON!"):
		b.outcome = Won

	case strings.Contains(line, "LOST!"):
		b.outcome = Lost

	case strings.HasPrefix(line, "ERROR") || strings.HasPrefix(line, "INVALID"):
		b.log.Warn().Str("line", line).Msg("server rejected command")
	}
	return nil
}

func (b *Bot) recordShot(m []string) {
	player, _ := strconv.Atoi(m[1])
	if player != b.player {
		return
	}
	x, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])

	result := engine.Miss
	switch m[4] {
	case "HIT":
		result = engine.Hit
	case "SUNK":
		result = engine.Sunk
	}
	b.strategy.Record(engine.Coord{X: x - 1, Y: y - 1}, result)
}

// playMatch connects one bot and plays a match to the end
func playMatch(ctx context.Context, addr, name string, idle time.Duration, rng *rand.Rand, log zerolog.Logger) (Outcome, int, error) {
	client, err := Dial(ctx, addr, idle)
	if err != nil {
		return Abandoned, 0, err
	}
	defer client.Close()

	bot := NewBot(name, client, randomFleet(rng), log)
	outcome, err := bot.Play(ctx)
	return outcome, bot.strategy.Fired(), err
}

// newApp builds the bruteforcer command
func newApp() *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "play naval battle matches against a server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "127.0.0.1:8080",
				Usage:   "game server address",
				Sources: cli.EnvVars("NAVAL_ADDR"),
			},
			&cli.StringFlag{
				Name:  "name",
				Value: "bot",
				Usage: "player name (suffixed with a number when --bots > 1)",
			},
			&cli.IntFlag{
				Name:  "bots",
				Value: 1,
				Usage: "bots to run at the same time",
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 1,
				Usage: "matches each bot plays",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: time.Now().UnixNano(),
				Usage: "seed for fleet placement",
			},
			&cli.DurationFlag{
				Name:  "idle",
				Value: 10 * time.Minute,
				Usage: "give up after this long without a server message",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every server message",
			},
		},
		Action: run,
	}
}

// run plays every bot's matches and fails if any match ended in an error
func run(ctx context.Context, cmd *cli.Command) error {
	level := zerolog.InfoLevel
	if cmd.Bool("verbose") {
		level = zerolog.TraceLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.Root().ErrWriter, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		tally  = map[Outcome]int{}
		failed int

		name  = cmd.String("name")
		bots  = cmd.Int("bots")
		games = cmd.Int("games")
	)
	for i := 0; i < bots; i++ {
		botName := name
		if bots > 1 {
			botName = fmt.Sprintf("%s%d", name, i+1)
		}
		rng := rand.New(rand.NewSource(cmd.Int64("seed") + int64(i)))

		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := 0; g < games; g++ {
				outcome, shots, err := playMatch(ctx, cmd.String("addr"), botName, cmd.Duration("idle"), rng, log)
				mu.Lock()
				tally[outcome]++
				if err != nil {
					failed++
				}
				mu.Unlock()

				event := log.Info()
				if err != nil {
					event = log.Error().Err(err)
				}
				event.Str("bot", botName).Int("game", g+1).Str("outcome", string(outcome)).Int("shots", shots).Msg("match over")
			}
		}()
	}
	wg.Wait()

	log.Info().Int("won", tally[Won]).Int("lost", tally[Lost]).Int("abandoned", tally[Abandoned]).Msg("done")
	if failed > 0 {
		return fmt.Errorf("%d matches failed", failed)
	}
	return nil
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
