package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go-mod.ewintr.nl/ytsum/model"
)

var clipboardWriteAll = clipboard.WriteAll

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)

	statusStyles = map[model.SummaryStatus]lipgloss.Style{
		model.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		model.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		model.StatusQueued:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		model.StatusError:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
	statusLabels = map[model.SummaryStatus]string{
		model.StatusDone:       "done",
		model.StatusInProgress: "working",
		model.StatusQueued:     "queued",
		model.StatusError:      "error",
	}
)

func statusTag(status model.SummaryStatus) string {
	label, ok := statusLabels[status]
	if !ok {
		label = string(status)
	}
	style, ok := statusStyles[status]
	if !ok {
		return "[" + label + "]"
	}

	return style.Render("[" + label + "]")
}

func renderMarkdown(md string, raw bool) (string, error) {
	if raw {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}

	return out, nil
}

func writeHeader(w io.Writer, s *model.Summary) {
	fmt.Fprintln(w, titleStyle.Render(s.DisplayTitle()))
	details := []string{statusTag(s.Status)}
	if s.Channel != "" {
		details = append(details, s.Channel)
	}
	if s.Model != "" {
		details = append(details, s.Model)
	}
	fmt.Fprintln(w, mutedStyle.Render(strings.Join(details, "  ")))
	fmt.Fprintln(w)
}

func writeSummary(w io.Writer, s *model.Summary, raw bool) error {
	if !raw {
		writeHeader(w, s)
	}
	switch {
	case s.Markdown != "":
		body, err := renderMarkdown(s.Markdown, raw)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, strings.TrimRight(body, "\n"))
	case s.Status == model.StatusError:
		fmt.Fprintf(w, "generation failed: %s\n", s.Error)
	default:
		fmt.Fprintln(w, "no summary yet")
	}

	return nil
}

func writeList(w io.Writer, summaries []*model.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "no summaries found")
		return
	}
	for _, s := range summaries {
		line := fmt.Sprintf("%s %s", statusTag(s.Status), titleStyle.Render(s.DisplayTitle()))
		if s.Channel != "" {
			line += "  " + s.Channel
		}
		line += "  " + mutedStyle.Render(fmt.Sprintf("%s %s", s.VideoID, s.UpdatedAt.Format("2006-01-02 15:04")))
		fmt.Fprintln(w, line)
	}
}

func copyMarkdown(w io.Writer, s *model.Summary) error {
	if s.Markdown == "" {
		return fmt.Errorf("nothing to copy, %s has no summary", s.VideoID)
	}
	if err := clipboardWriteAll(s.Markdown); err != nil {
		return fmt.Errorf("unable to copy to clipboard: %w", err)
	}
	fmt.Fprintln(w, mutedStyle.Render("copied to clipboard"))

	return nil
}
