package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/operations"
	"github.com/dmitrijs2005/nestkey/internal/passgen"
	"github.com/dmitrijs2005/nestkey/internal/vault"
)

func (a *App) entries(ctx context.Context) ([]vault.Entry, error) {
	res, err := a.exec(ctx, operations.VaultGet{})
	if err != nil {
		return nil, err
	}
	return res.Vault, nil
}

// resolve finds the entry whose id equals ref or, failing that, the only
// entry whose id starts with ref.
func resolve(entries []vault.Entry, ref string) (vault.Entry, error) {
	if i := vault.Find(entries, ref); i >= 0 {
		return entries[i], nil
	}

	var found []vault.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.ID, ref) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return vault.Entry{}, fmt.Errorf("%s: %w", ref, common.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return vault.Entry{}, fmt.Errorf("id prefix %q matches %d entries", ref, len(found))
	}
}

func (a *App) lookup(ctx context.Context, ref string) (vault.Entry, error) {
	entries, err := a.entries(ctx)
	if err != nil {
		return vault.Entry{}, err
	}
	return resolve(entries, ref)
}

func (a *App) List(ctx context.Context, filter string) error {
	entries, err := a.entries(ctx)
	if err != nil {
		return a.fail(err)
	}

	shown := make([]vault.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Matches(filter) {
			shown = append(shown, e)
		}
	}
	fmt.Fprintln(a.out, renderEntries(shown, a.palette))
	return nil
}

func (a *App) Show(ctx context.Context, ref string) error {
	e, err := a.lookup(ctx, ref)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, renderEntry(e, a.palette))
	return nil
}

// readEntryPassword asks for a password; an empty answer generates one when
// generate is set and keeps current otherwise.
func (a *App) readEntryPassword(ctx context.Context, current string, generate bool) (string, error) {
	prompt := "Password (empty to generate)"
	if !generate {
		prompt = "Password (empty keeps current)"
	}
	p, err := GetSecret(a.reader, prompt, a.out)
	if err != nil || p != "" {
		return p, err
	}
	if !generate {
		return current, nil
	}

	res, err := a.exec(ctx, operations.GeneratePassword{Options: passgen.DefaultOptions()})
	if err != nil {
		return "", err
	}
	a.say("Generated a %d character password.", len(res.Password))
	return res.Password, nil
}

func (a *App) Add(ctx context.Context) error {
	if !a.isUnlocked() {
		return a.fail(common.ErrLocked)
	}

	site, err := GetSimpleText(a.reader, "Site", a.out)
	if err != nil {
		return a.fail(err)
	}
	if site == "" {
		return a.fail(fmt.Errorf("site is required"))
	}
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return a.fail(err)
	}
	password, err := a.readEntryPassword(ctx, "", true)
	if err != nil {
		return a.fail(err)
	}
	notes, err := GetSimpleText(a.reader, "Notes", a.out)
	if err != nil {
		return a.fail(err)
	}

	res, err := a.exec(ctx, operations.VaultAdd{Entry: vault.Entry{
		Site: site, Username: username, Password: password, Notes: notes,
	}})
	if err != nil {
		return a.fail(err)
	}
	a.say("Added %s.", shortID(res.Entry.ID))
	return nil
}

func (a *App) Edit(ctx context.Context, ref string) error {
	e, err := a.lookup(ctx, ref)
	if err != nil {
		return a.fail(err)
	}

	if e.Site, err = GetTextWithDefault(a.reader, "Site", e.Site, a.out); err != nil {
		return a.fail(err)
	}
	if e.Username, err = GetTextWithDefault(a.reader, "Username", e.Username, a.out); err != nil {
		return a.fail(err)
	}
	if e.Password, err = a.readEntryPassword(ctx, e.Password, false); err != nil {
		return a.fail(err)
	}
	if e.Notes, err = GetTextWithDefault(a.reader, "Notes", e.Notes, a.out); err != nil {
		return a.fail(err)
	}

	if _, err := a.exec(ctx, operations.VaultUpdate{ID: e.ID, Entry: e}); err != nil {
		return a.fail(err)
	}
	a.say("Updated %s.", shortID(e.ID))
	return nil
}

func (a *App) Delete(ctx context.Context, ref string) error {
	e, err := a.lookup(ctx, ref)
	if err != nil {
		return a.fail(err)
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s (%s)?", e.Site, shortID(e.ID)), a.out)
	if err != nil {
		return a.fail(err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if _, err := a.exec(ctx, operations.VaultDelete{ID: e.ID}); err != nil {
		return a.fail(err)
	}
	a.say("Deleted.")
	return nil
}
