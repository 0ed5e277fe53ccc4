package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/nestkey/internal/settings"
	"github.com/dmitrijs2005/nestkey/internal/vault"
)

// shortIDLen is how much of an entry id the list view shows. Commands accept
// any unique prefix.
const shortIDLen = 8

type palette struct {
	border lipgloss.Color
	header lipgloss.Style
	cell   lipgloss.Style
	muted  lipgloss.Style
	label  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
}

func paletteFor(t settings.Theme) palette {
	if t == settings.ThemeDark {
		return palette{
			border: lipgloss.Color("240"),
			header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).Padding(0, 1),
			cell:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1),
			muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1),
			label:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117")),
			ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
			err:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		}
	}
	return palette{
		border: lipgloss.Color("250"),
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("57")).Padding(0, 1),
		cell:   lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Padding(0, 1),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Padding(0, 1),
		label:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// renderEntries draws entries as a table; passwords are never shown here.
func renderEntries(entries []vault.Entry, p palette) string {
	if len(entries) == 0 {
		return p.muted.Render("(no entries)")
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{shortID(e.ID), e.Site, e.Username, formatTime(e.UpdatedAt)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(p.border)).
		Headers("ID", "SITE", "USERNAME", "UPDATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.header
			case col == 0 || col == 3:
				return p.muted
			default:
				return p.cell
			}
		})

	return t.Render()
}

func renderEntry(e vault.Entry, p palette) string {
	var b strings.Builder
	line := func(k, v string) {
		fmt.Fprintf(&b, "%s %s\n", p.label.Render(fmt.Sprintf("%-9s", k+":")), v)
	}
	line("ID", e.ID)
	line("Site", e.Site)
	line("Username", e.Username)
	line("Password", e.Password)
	if e.Notes != "" {
		line("Notes", e.Notes)
	}
	if e.CreatedAt != 0 {
		line("Created", formatTime(e.CreatedAt))
	}
	if e.UpdatedAt != 0 {
		line("Updated", formatTime(e.UpdatedAt))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Local().Format("2006-01-02 15:04")
}
