package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"
	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/result"
)

const wrapWidth = 72

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// await runs stream to completion and turns an Error state into an error
// carrying the user-facing message.
func await[T any](ctx context.Context, stream result.Stream[T]) (T, error) {
	r := stream.Await(ctx)
	if r.IsError() {
		var zero T
		return zero, errors.New(r.Message)
	}
	return r.Value, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(strings.TrimPrefix(a, "#"))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid item id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func checkMark(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// renderItems draws items as a table, one row per item in the given order.
func renderItems(items []domain.Item) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DONE", "STATUS", "TITLE", "AUTHOR").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, it := range items {
		t.Row(strconv.Itoa(it.ID), checkMark(it.Completed), string(it.Status), it.Title, it.Author.Name)
	}
	return t.String()
}

// renderItem prints one item with its description wrapped.
func renderItem(w io.Writer, it domain.Item) {
	fmt.Fprintf(w, "#%d %s %s\n", it.ID, checkMark(it.Completed), it.Title)
	fmt.Fprintf(w, "Status:   %s\n", it.Status)
	if it.Author.Name != "" {
		fmt.Fprintf(w, "Reporter: %s\n", it.Author.Name)
	}
	if it.CreatedAt != "" {
		fmt.Fprintf(w, "Reported: %s\n", it.CreatedAt)
	}
	if it.Cover != "" {
		fmt.Fprintf(w, "Cover:    %s\n", it.Cover)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, wordwrap.String(it.Description, wrapWidth))
}

// prompt asks for a value on in when the flag was left empty.
func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
