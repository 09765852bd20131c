package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robby/lostfound/internal/domain"
	"github.com/robby/lostfound/internal/logging"
	"github.com/robby/lostfound/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentRequests caps the pipelines a multi-id command runs at once.
const maxConcurrentRequests = 4

func newListCmd(e *env) *cobra.Command {
	var completed, pending bool
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reported items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if completed && pending {
				return errors.New("--completed and --pending are mutually exclusive")
			}
			var filter *bool
			if completed || pending {
				filter = &completed
			}
			items, err := await(cmd.Context(), e.items.List(filter))
			if err != nil {
				return err
			}

			s := store.New()
			s.Load(items)
			s.Filter(query)
			shown := s.Displayed()
			if len(shown) == 0 {
				fmt.Fprintln(e.out, "No items.")
				return nil
			}
			fmt.Fprintln(e.out, renderItems(shown))
			return nil
		},
	}
	cmd.Flags().BoolVar(&completed, "completed", false, "Only items already returned")
	cmd.Flags().BoolVar(&pending, "pending", false, "Only items not yet returned")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only items whose title contains this text")
	return cmd
}

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			item, err := await(cmd.Context(), e.items.Get(ids[0]))
			if err != nil {
				return err
			}
			renderItem(e.out, item)
			return nil
		},
	}
}

// itemInput holds the item flags shared by add and edit.
type itemInput struct {
	title       string
	description string
	status      string
}

func (in *itemInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.title, "title", "", "Item title")
	cmd.Flags().StringVar(&in.description, "description", "", "Item description")
	cmd.Flags().StringVar(&in.status, "status", "", "lost or found")
}

func checkItem(title, description string, status domain.Status) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(description) == "" {
		return errors.New("description is required")
	}
	if _, ok := domain.ParseStatus(string(status)); !ok {
		return fmt.Errorf("status must be lost or found, got %q", status)
	}
	return nil
}

func newAddCmd(e *env) *cobra.Command {
	var in itemInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Report a lost or found item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := domain.Status(strings.ToLower(strings.TrimSpace(in.status)))
			title := strings.TrimSpace(in.title)
			description := strings.TrimSpace(in.description)
			if err := checkItem(title, description, status); err != nil {
				return err
			}
			id, err := await(cmd.Context(), e.items.Create(title, description, status))
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Reported item #%d\n", id)
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var in itemInput
	var completed bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item; flags left out keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			// the update endpoint replaces every field, so start from the current item
			item, err := await(cmd.Context(), e.items.Get(ids[0]))
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				item.Title = strings.TrimSpace(in.title)
			}
			if flags.Changed("description") {
				item.Description = strings.TrimSpace(in.description)
			}
			if flags.Changed("status") {
				item.Status = domain.Status(strings.ToLower(strings.TrimSpace(in.status)))
			}
			if flags.Changed("completed") {
				item.Completed = completed
			}
			if err := checkItem(item.Title, item.Description, item.Status); err != nil {
				return err
			}

			ack, err := await(cmd.Context(), e.items.Update(item.ID, item.Title, item.Description, item.Status, item.Completed))
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "#%d: %s\n", item.ID, messageOr(ack.Message, "updated"))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&completed, "completed", false, "Mark the item returned (or not, with --completed=false)")
	return cmd
}

// outcome is the per-id result of a multi-id command.
type outcome struct {
	id  int
	msg string
	err error
}

// forEachID runs fn for every id concurrently and reports the outcomes in
// argument order. Each id is its own pipeline; one failure does not stop the
// others, but any failure makes the command fail.
func (e *env) forEachID(cmd *cobra.Command, args []string, fn func(id int) (string, error)) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	outcomes := make([]outcome, len(ids))
	var g errgroup.Group
	g.SetLimit(maxConcurrentRequests)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if cmd.Context().Err() != nil {
				outcomes[i] = outcome{id: id, err: cmd.Context().Err()}
				return nil
			}
			msg, err := fn(id)
			outcomes[i] = outcome{id: id, msg: msg, err: err}
			return nil // errors are reported per id
		})
	}
	_ = g.Wait()

	var failed int
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			logging.Warn("item command failed", "cmd", cmd.Name(), "item", o.id, "err", o.err)
			fmt.Fprintf(e.out, "#%d: %v\n", o.id, o.err)
			continue
		}
		fmt.Fprintf(e.out, "#%d: %s\n", o.id, o.msg)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, len(ids))
	}
	return nil
}

func newCompletionCmd(e *env, use string, completed bool) *cobra.Command {
	short := "Mark items as returned"
	if !completed {
		short = "Mark items as not yet returned"
	}
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.forEachID(cmd, args, func(id int) (string, error) {
				item, err := await(ctx, e.items.Get(id))
				if err != nil {
					return "", err
				}
				if item.Completed == completed {
					return "already " + use, nil
				}
				ack, err := await(ctx, e.items.Update(item.ID, item.Title, item.Description, item.Status, completed))
				if err != nil {
					return "", err
				}
				return messageOr(ack.Message, "updated"), nil
			})
		},
	}
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete items",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.forEachID(cmd, args, func(id int) (string, error) {
				ack, err := await(ctx, e.items.Delete(id))
				if err != nil {
					return "", err
				}
				return messageOr(ack.Message, "deleted"), nil
			})
		},
	}
}
