// Package formatter provides functionality for formatting and displaying lookup results.
package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Ch00k/cloud-compass/internal/compass"
	"github.com/Ch00k/cloud-compass/internal/regions"
)

// FormatView renders a session view as plain text
func FormatView(v compass.View) string {
	var output strings.Builder

	switch v.State {
	case compass.ViewLoading, compass.ViewError, compass.ViewNoSelection:
		output.WriteString(v.Message)
		output.WriteString("\n")
		if v.State == compass.ViewNoSelection {
			output.WriteString(FormatProviders())
		}
		return output.String()

	case compass.ViewUnranked:
		output.WriteString(v.Message)
		output.WriteString("\n\n")
		output.WriteString(regionsOrNone(v.Regions, false))

	case compass.ViewRanked:
		output.WriteString(v.Title)
		output.WriteString("\n\n")
		output.WriteString(regionsOrNone(v.Regions, true))
	}

	return output.String()
}

// regionsOrNone renders the regions table, or a notice when there are none
func regionsOrNone(rs []regions.Region, withDistance bool) string {
	if len(rs) == 0 {
		return "No data centers found\n"
	}
	return FormatTable(rs, withDistance)
}

// FormatProviders lists the selectable providers
func FormatProviders() string {
	var output strings.Builder
	output.WriteString("Available providers:\n")
	for _, p := range regions.Providers {
		output.WriteString(fmt.Sprintf("    %-8s %s\n", p.Tag, p.Label))
	}
	return output.String()
}

// FormatTable formats regions as a table string
func FormatTable(rs []regions.Region, withDistance bool) string {
	if len(rs) == 0 {
		return ""
	}

	// Build table data
	headers := []string{"Cloud", "Region", "Description"}
	if withDistance {
		headers = append(headers, "Distance (km)")
	}
	rows := make([][]string, len(rs))

	for i, r := range rs {
		row := []string{
			r.ProviderTag,
			r.RegionCode,
			r.Description,
		}
		if withDistance {
			row = append(row, formatDistance(r.DistanceKm))
		}
		rows[i] = row
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			cellWidth := utf8.RuneCountInString(cell)
			if cellWidth > widths[i] {
				widths[i] = cellWidth
			}
		}
	}

	// Build table output
	var output strings.Builder

	// Header row
	headerParts := make([]string, len(headers))
	for i, header := range headers {
		headerParts[i] = padRight(header, widths[i])
	}
	output.WriteString(strings.TrimRight(strings.Join(headerParts, "   "), " "))
	output.WriteString("\n")

	// Separator row
	separators := make([]string, len(headers))
	for i, width := range widths {
		separators[i] = strings.Repeat("-", width)
	}
	output.WriteString(strings.Join(separators, "   "))
	output.WriteString("\n")

	// Data rows
	for _, row := range rows {
		rowParts := make([]string, len(row))
		for i, cell := range row {
			rowParts[i] = padRight(cell, widths[i])
		}
		output.WriteString(strings.TrimRight(strings.Join(rowParts, "   "), " "))
		output.WriteString("\n")
	}

	return output.String()
}

// padRight pads a string with spaces on the right to reach the specified width
func padRight(s string, width int) string {
	runeCount := utf8.RuneCountInString(s)
	if runeCount >= width {
		return s
	}
	return s + strings.Repeat(" ", width-runeCount)
}

// formatDistance formats a distance value for display
func formatDistance(distance *float64) string {
	if distance == nil {
		return ""
	}
	return fmt.Sprintf("%.0f", *distance)
}
