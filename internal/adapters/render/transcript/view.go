package transcript

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type EntryKind int

const (
	KindCommand EntryKind = iota
	KindNotification
	KindCompletion
	KindFailure
)

// Entry is one line of a bridge session transcript.
type Entry struct {
	At     time.Time
	Kind   EntryKind
	Method string
	Args   map[string]any
}

type RenderOptions struct {
	Title    string
	Start    time.Time
	Snapshot *domain.RegistrySnapshot
}

// Render lays out the recorded traffic, one line per entry, followed by the
// registry snapshot when one is given.
func Render(entries []Entry, opts RenderOptions) string {
	return renderView(entries, opts, newStyles())
}

func renderView(entries []Entry, opts RenderOptions, s styles) string {
	title := opts.Title
	if title == "" {
		title = "Wallet Bridge Transcript"
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("events: %d", len(entries))),
	}

	if len(entries) == 0 {
		lines = append(lines, s.empty.Render("No bridge traffic recorded."))
	} else {
		body := make([]string, 0, len(entries))
		for _, entry := range entries {
			body = append(body, renderEntry(entry, opts, s))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, body...)))
	}

	if opts.Snapshot != nil {
		lines = append(lines, s.section.Render(renderSnapshot(*opts.Snapshot, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEntry(entry Entry, opts RenderOptions, s styles) string {
	arrow, style := kindMarker(entry.Kind, s)

	parts := []string{
		s.timestamp.Render(formatOffset(entry.At, opts.Start)),
		style.Render(arrow + " " + entry.Method),
	}
	if args := formatArgs(entry.Args); args != "" {
		parts = append(parts, s.detail.Render(args))
	}

	return strings.Join(parts, " ")
}

func kindMarker(kind EntryKind, s styles) (string, lipgloss.Style) {
	switch kind {
	case KindNotification:
		return "<-", s.notification
	case KindCompletion:
		return "ok", s.completion
	case KindFailure:
		return "!!", s.failure
	default:
		return "->", s.command
	}
}

func renderSnapshot(snapshot domain.RegistrySnapshot, s styles) string {
	return s.header.Render(fmt.Sprintf("active sessions: %d  pending requests: %d", len(snapshot.Sessions), len(snapshot.Pending)))
}

func formatOffset(at, start time.Time) string {
	if at.IsZero() || start.IsZero() {
		return "[--.---]"
	}
	offset := at.Sub(start)
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf("[%06.3f]", offset.Seconds())
}

// formatArgs prints args sorted by key, shortening opaque ids.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}

	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		value := fmt.Sprint(args[key])
		if key == domain.ArgSessionID || key == domain.ArgRequestID {
			value = shortID(value)
		}
		pairs = append(pairs, key+"="+value)
	}

	return strings.Join(pairs, " ")
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
