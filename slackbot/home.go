package slackbot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/slack-go/slack"
)

// FormatTable renders rows as a fixed-width monospace table wrapped in a
// code fence. Cells that parse as decimals get right-justified with grouped
// thousands and six decimals, everything else is left-justified.
func FormatTable(header []string, widths []int, rows [][]string) string {
	lines := []string{formatRow(header, widths)}
	separators := make([]string, len(widths))
	for i, width := range widths {
		separators[i] = strings.Repeat("-", width)
	}
	lines = append(lines, strings.Join(separators, "-|-"))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}
	return "```\n" + strings.Join(lines, "\n") + "\n```"
}

func formatRow(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		if value, err := strconv.ParseFloat(cell, 64); err == nil && cell != "" {
			cell = formatAmount(value)
			cells[i] = padLeft(cell, width)
		} else {
			cells[i] = padRight(cell, width)
		}
	}
	return strings.Join(cells, " | ")
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// 1234567.8 -> 1,234,567.800000
func formatAmount(value float64) string {
	s := strconv.FormatFloat(value, 'f', 6, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)
	return sign + strings.Join(grouped, ",") + "." + fracPart
}

// PublishResult pushes the outcome of a report run to the Home tab of the
// user that submitted the modal.
func (b *Bot) PublishResult(ctx context.Context, userID string, submission *ReportSubmission, result string) error {
	resultText := "No results (yet)."
	if result != "" {
		resultText = fmt.Sprintf("*Results of the run of %s:*\n%s",
			b.now().Format("2006-01-02 15:04:05"), result)
	}
	rangeText := fmt.Sprintf(":small_blue_diamond: Start date: %s | End date: %s",
		submission.StartDate.Format(dateLayout), submission.EndDate.Format(dateLayout))

	view := slack.HomeTabViewRequest{
		Type: slack.VTHomeTab,
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Hello <@%s>!", userID), false, false),
				nil, nil,
			),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, rangeText, false, false),
				nil, nil,
			),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, resultText, false, false),
				nil, nil,
			),
		}},
	}
	if _, err := b.web.PublishViewContext(ctx, userID, view, ""); err != nil {
		return fmt.Errorf("could not publish home tab for %s: %w", userID, err)
	}
	return nil
}
