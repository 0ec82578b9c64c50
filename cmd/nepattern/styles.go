package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	nepattern "github.com/SimonDaKappa/go-nepattern"
)

type styles struct {
	valid  lipgloss.Style
	failed lipgloss.Style
	def    lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
}

// newStyles returns plain styles unless color is on and w is a terminal.
func newStyles(w io.Writer, color bool) styles {
	s := styles{
		valid:  lipgloss.NewStyle(),
		failed: lipgloss.NewStyle(),
		def:    lipgloss.NewStyle(),
		header: lipgloss.NewStyle(),
		muted:  lipgloss.NewStyle(),
	}
	if !color || !isTerminal(w) {
		return s
	}

	s.valid = s.valid.Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"})
	s.failed = s.failed.Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"})
	s.def = s.def.Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#EF6C00", Dark: "#FFB74D"})
	s.header = s.header.Bold(true).Underline(true)
	s.muted = s.muted.Foreground(lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"})
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s styles) flag(flag nepattern.ResultFlag) lipgloss.Style {
	switch flag {
	case nepattern.FlagValid:
		return s.valid
	case nepattern.FlagError:
		return s.failed
	default:
		return s.def
	}
}

// pad right-pads a rendered cell to width printable columns.
func pad(cell string, width int) string {
	if n := width - lipgloss.Width(cell); n > 0 {
		return cell + strings.Repeat(" ", n)
	}
	return cell
}
