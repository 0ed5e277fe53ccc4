package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface runREPL drives. App implements it.
type execIface interface {
	isUnlocked() bool
	Setup(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	ChangePin(ctx context.Context) error
	List(ctx context.Context, filter string) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Copy(ctx context.Context, id string) error
	Generate(ctx context.Context, args []string) error
	Wipe(ctx context.Context) error
	Theme(ctx context.Context, args []string) error
}

const (
	helpLocked   = "Available commands: setup, unlock, gen, theme, help, exit"
	helpUnlocked = "Available commands: list [filter], show <id>, add, edit <id>, delete <id>, copy <id>, gen [-n N] [-lower] [-upper] [-digits] [-symbols], chpin, lock, wipe, theme [dark|light], help, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit". Handler
// errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("nestkey (%s) > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			if a.isUnlocked() {
				printlnFn(helpUnlocked)
			} else {
				printlnFn(helpLocked)
			}

		case "setup":
			_ = a.Setup(ctx)

		case "unlock":
			_ = a.Unlock(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "chpin":
			_ = a.ChangePin(ctx)

		case "l", "list", "ls":
			_ = a.List(ctx, strings.Join(args, " "))

		case "show":
			if id, ok := needID(cmd, args); ok {
				_ = a.Show(ctx, id)
			}

		case "add":
			_ = a.Add(ctx)

		case "edit":
			if id, ok := needID(cmd, args); ok {
				_ = a.Edit(ctx, id)
			}

		case "rm", "delete":
			if id, ok := needID(cmd, args); ok {
				_ = a.Delete(ctx, id)
			}

		case "cp", "copy":
			if id, ok := needID(cmd, args); ok {
				_ = a.Copy(ctx, id)
			}

		case "gen":
			_ = a.Generate(ctx, args)

		case "wipe":
			_ = a.Wipe(ctx)

		case "theme":
			_ = a.Theme(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

func needID(cmd string, args []string) (string, bool) {
	if len(args) == 0 {
		printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
		return "", false
	}
	return args[0], true
}
