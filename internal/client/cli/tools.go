package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/passgen"
	"github.com/dmitrijs2005/nestkey/internal/settings"
)

// parseGenArgs reads "gen" arguments. Without any class flag every class is
// enabled.
func parseGenArgs(args []string) (passgen.Options, error) {
	opts := passgen.Options{}

	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&opts.Length, "n", passgen.DefaultLength, "length")
	fs.BoolVar(&opts.Lowercase, "lower", false, "lowercase letters")
	fs.BoolVar(&opts.Uppercase, "upper", false, "uppercase letters")
	fs.BoolVar(&opts.Numbers, "digits", false, "digits")
	fs.BoolVar(&opts.Symbols, "symbols", false, "symbols")

	if err := fs.Parse(args); err != nil {
		return passgen.Options{}, err
	}
	if fs.NArg() > 0 {
		return passgen.Options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	if !opts.Lowercase && !opts.Uppercase && !opts.Numbers && !opts.Symbols {
		length := opts.Length
		opts = passgen.DefaultOptions()
		opts.Length = length
	}
	return opts, nil
}

func (a *App) Generate(ctx context.Context, args []string) error {
	opts, err := parseGenArgs(args)
	if err != nil {
		return a.fail(fmt.Errorf("usage: gen [-n N] [-lower] [-upper] [-digits] [-symbols]: %w", err))
	}

	res, err := a.exec(ctx, operations.GeneratePassword{Options: opts})
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, res.Password)
	return nil
}

func (a *App) Wipe(ctx context.Context) error {
	ok, err := Confirm(a.reader, "Delete ALL entries? This cannot be undone", a.out)
	if err != nil {
		return a.fail(err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if _, err := a.exec(ctx, operations.VaultWipe{}); err != nil {
		return a.fail(err)
	}
	a.setUnlocked(false)
	a.say("Vault wiped and locked.")
	return nil
}

// Theme shows the current theme or switches to the one given.
func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		res, err := a.exec(ctx, operations.ThemeGet{})
		if err != nil {
			return a.fail(err)
		}
		if res.ThemeUpdatedAt != 0 {
			fmt.Fprintf(a.out, "Theme: %s (changed %s)\n", res.Theme, formatTime(res.ThemeUpdatedAt))
			return nil
		}
		fmt.Fprintln(a.out, "Theme:", res.Theme)
		return nil
	}

	res, err := a.exec(ctx, operations.ThemeSet{Theme: args[0]})
	if err != nil {
		return a.fail(err)
	}
	if t, err := settings.ParseTheme(res.Theme); err == nil {
		a.palette = paletteFor(t)
	}
	a.say("Theme set to %s.", res.Theme)
	return nil
}
