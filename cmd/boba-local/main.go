// boba-local 单机热座模式：所有玩家轮流在同一个终端选牌
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sudooom.boba/internal/config"
	"sudooom.boba/internal/engine"
	"sudooom.boba/internal/render"
	"sudooom.boba/internal/session"
)

func main() {
	var (
		players      = flag.String("players", "alice,bob", "comma separated player names (2-5)")
		seed         = flag.Uint64("seed", 0, "random seed, 0 picks one")
		rounds       = flag.Int("rounds", engine.DefaultRoundCount, "number of rounds")
		distribution = flag.String("distribution", "", "card distribution yaml file")
		logFile      = flag.String("log", filepath.Join("temp", "local_debug.log"), "debug log file")
	)
	flag.Parse()

	logger, closeLog, err := openLogger(*logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log:", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	dist, err := config.LoadDistribution(*distribution)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load distribution:", err)
		os.Exit(1)
	}

	cfg := engine.Config{
		PlayerNames:  splitNames(*players),
		Distribution: dist,
		RoundCount:   *rounds,
	}
	if *seed != 0 {
		cfg.Seed = engine.SeedPtr(*seed)
	}

	s, err := session.New("local", cfg, session.Options{Logger: logger})
	if err != nil {
		fmt.Fprintln(os.Stderr, "new game:", err)
		os.Exit(1)
	}
	s.Start(context.Background())
	fmt.Printf("Boba Go, seed %d\n", s.Snapshot().Seed)

	if err := run(context.Background(), s, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run 依次询问每个未提交的玩家，直到对局结束
func run(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if ended, over := s.Ended(); over {
			render.Scores(out, ended)
			return nil
		}

		snap := s.Snapshot()
		player := -1
		for id, state := range snap.GameStatus.PlayerTurnStates {
			if state == engine.TurnNotSelected {
				player = id
				break
			}
		}
		if player < 0 {
			return fmt.Errorf("no player to move in round %d turn %d", snap.GameStatus.Round, snap.GameStatus.Turn)
		}

		update, err := s.Update(player)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n=== %s's turn ===\n", snap.PlayersPublic[player].Name)
		render.Update(out, update)
		fmt.Fprint(out, "select (numbers or codes), 'tray', 'untray' or 'quit': ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return s.Disconnect(ctx, player)
		}

		if err := handleInput(ctx, s, player, update.Hand, strings.TrimSpace(scanner.Text())); err != nil {
			fmt.Fprintln(out, "!", err)
		}
	}
}

func handleInput(ctx context.Context, s *session.Session, player int, hand engine.Cards, line string) error {
	switch line {
	case "quit":
		return s.Disconnect(ctx, player)
	case "tray":
		return s.ToggleDrinkTray(ctx, player, true)
	case "untray":
		return s.ToggleDrinkTray(ctx, player, false)
	}

	selected, remaining, err := render.ParseSelection(line, hand)
	if err != nil {
		return err
	}
	return s.Submit(ctx, player, selected, remaining)
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// openLogger 调试日志写到文件，终端只显示游戏
func openLogger(path string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}
