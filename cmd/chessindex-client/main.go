// Package main implements an interactive query console for the chess
// index API: set a position, then explore moves, outcomes, and games.
package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"chessindex/internal/client/api"
	"chessindex/internal/client/display"
	"chessindex/internal/position"

	"github.com/chzyer/readline"
)

func main() {
	baseURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	client := api.New(baseURL)
	currentFEN := position.Start

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chessindex"),
		HistoryFile:     ".chessindex_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChess Index Console%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, baseURL, display.Reset)
	fmt.Println("Type 'help' for commands")
	fmt.Println()

	for {
		rl.SetPrompt(display.Prompt("chessindex [" + shortFEN(currentFEN) + "]"))

		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		if err := execute(client, &currentFEN, cmd, args); err != nil {
			fmt.Printf("%sError: %s%s\n", display.Red, err.Error(), display.Reset)
		}
	}
}

func execute(client *api.Client, currentFEN *string, cmd string, args []string) error {
	switch cmd {
	case "fen", "f":
		if len(args) == 0 {
			fmt.Println(*currentFEN)
			return nil
		}
		fen, err := position.Normalize(strings.Join(args, " "))
		if err != nil {
			return err
		}
		*currentFEN = fen
		fmt.Printf("%sPosition set%s\n", display.Green, display.Reset)
		return nil

	case "game", "g":
		if len(args) != 1 {
			return fmt.Errorf("usage: game <id>")
		}
		detail, err := client.GetGame(args[0])
		if err != nil {
			return err
		}
		display.PrettyPrintJSON(detail)
		return nil

	case "moves", "m":
		limit := ""
		if len(args) > 0 {
			limit = args[0]
		}
		stats, err := client.TopMoves(*currentFEN, limit)
		if err != nil {
			return err
		}
		display.PrettyPrintJSON(stats)
		return nil

	case "outcomes", "o":
		bands, err := client.OutcomesByRatingBand(*currentFEN)
		if err != nil {
			return err
		}
		display.PrettyPrintJSON(bands)
		return nil

	case "search", "s":
		filters := url.Values{}
		for _, arg := range args {
			k, v, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("filters are key=value (e.g. whiteMin=2000 outcome=1-0)")
			}
			filters.Set(k, v)
		}
		results, err := client.SearchGames(*currentFEN, filters)
		if err != nil {
			return err
		}
		display.PrettyPrintJSON(results)
		return nil

	case "help", "?":
		printHelp()
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type 'help')", cmd)
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  fen [FEN]            show or set the current position")
	fmt.Println("  game <id>            fetch one game with its move list")
	fmt.Println("  moves [limit]        top responses from the current position")
	fmt.Println("  outcomes             outcome distribution by rating band")
	fmt.Println("  search [k=v ...]     notable games through the current position")
	fmt.Println("                       filters: whiteMin whiteMax blackMin blackMax")
	fmt.Println("                                whiteName blackName outcome")
	fmt.Println("  exit                 leave the console")
}

// shortFEN trims a position key down to its placement field for prompts.
func shortFEN(fen string) string {
	if i := strings.IndexByte(fen, ' '); i > 0 {
		fen = fen[:i]
	}
	if len(fen) > 18 {
		return fen[:18] + "..."
	}
	return fen
}
