// Copyright 2026 The Capucosmetic Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/capucosmetics/capucosmetic/lib/archive"
	"github.com/capucosmetics/capucosmetic/lib/build"
	"github.com/capucosmetics/capucosmetic/lib/cosmetic"
)

// reportStyles renders the human-readable reports. Colors follow the
// terminal's capabilities (and NO_COLOR) unless disabled outright.
type reportStyles struct {
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
}

func newReportStyles(w io.Writer, noColor bool) reportStyles {
	renderer := lipgloss.NewRenderer(w)
	if noColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return reportStyles{
		success: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		failure: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		warning: renderer.NewStyle().Foreground(lipgloss.Color("3")),
		label:   renderer.NewStyle().Bold(true),
		muted:   renderer.NewStyle().Faint(true),
	}
}

func (s reportStyles) renderBuild(w io.Writer, result *build.Result) {
	took := s.muted.Render("in " + formatDuration(result.Duration()))

	if result.Succeeded() {
		fmt.Fprintf(w, "%s %s\n", s.success.Render("Build succeeded"), took)
		size := int64(0)
		if result.Manifest != nil {
			size = result.Manifest.Size
		}
		fmt.Fprintf(w, "  %s %s (%s)\n", s.label.Render("Archive:"), result.ArchivePath, humanize.Bytes(uint64(size)))
		if result.Manifest != nil {
			s.renderEntries(w, result.Manifest.Entries)
		}
	} else {
		headline := fmt.Sprintf("Build failed: %s", result.Kind)
		if result.Stage != build.StateIdle {
			headline += " during " + result.Stage.String()
		}
		fmt.Fprintf(w, "%s %s\n", s.failure.Render(headline), took)
		fmt.Fprintf(w, "  %s\n", result.Error)
		if len(result.Diagnostics) > 0 {
			fmt.Fprintf(w, "  %s\n", s.label.Render("Diagnostics:"))
			for _, entry := range result.Diagnostics {
				for line := range strings.Lines(entry) {
					fmt.Fprintf(w, "    %s\n", strings.TrimRight(line, "\n"))
				}
			}
		}
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  %s %s\n", s.warning.Render("Warning:"), warning)
	}
}

func (s reportStyles) renderEntries(w io.Writer, entries []archive.EntryInfo) {
	fmt.Fprintf(w, "  %s\n", s.label.Render("Entries:"))
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, entry := range entries {
		fmt.Fprintf(table, "    %s\t%s\t%s\t%s\n",
			entry.Name, humanize.Bytes(uint64(entry.Size)), entry.Method, entry.Digest.Short())
	}
	table.Flush()
}

func (s reportStyles) renderInspection(w io.Writer, manifest archive.Manifest, metadata cosmetic.Metadata) {
	fmt.Fprintf(w, "%s %s (%s)\n", s.label.Render("Archive:"), manifest.Path, humanize.Bytes(uint64(manifest.Size)))
	s.renderEntries(w, manifest.Entries)

	fmt.Fprintf(w, "  %s\n", s.label.Render("Metadata:"))
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(table, "    name\t%s\n", metadata.Name)
	fmt.Fprintf(table, "    author\t%s\n", metadata.Author)
	fmt.Fprintf(table, "    version\t%d\n", metadata.Version)
	fmt.Fprintf(table, "    description\t%s\n", metadata.Description)
	fmt.Fprintf(table, "    syncToLeftHand\t%t\n", metadata.SyncToLeftHand)
	fmt.Fprintf(table, "    syncToRightHand\t%t\n", metadata.SyncToRightHand)
	table.Flush()
}

func formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.1fs", duration.Seconds())
}
