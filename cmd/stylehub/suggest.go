package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/search"
)

// suggestDrainTimeout bounds how long suggest waits for the last query's
// results after input ends.
const suggestDrainTimeout = 5 * time.Second

func newSuggestCmd(c *cli) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Read search-box contents line by line from stdin and print live suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.catalogService(ctx)
			if err != nil {
				return err
			}

			updates := make(chan search.Update, 64)
			s := search.NewSuggester(svc.Search,
				search.WithDebounce(debounce),
				search.WithLogger(c.logger),
				search.WithOnUpdate(func(u search.Update) {
					select {
					case updates <- u:
					default:
					}
				}),
			)
			defer s.Close()

			lines := make(chan string)
			go func() {
				defer close(lines)
				sc := bufio.NewScanner(c.in)
				for sc.Scan() {
					select {
					case lines <- sc.Text():
					case <-ctx.Done():
						return
					}
				}
			}()

			var (
				last, shown string
				drain       <-chan time.Time
				pending     = lines
			)
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()

				case line, ok := <-pending:
					if !ok {
						if len([]rune(last)) <= search.MinQueryLength || shown == last {
							c.flushUpdates(updates)
							return nil
						}
						pending = nil
						drain = time.After(debounce + suggestDrainTimeout)
						continue
					}
					last = line
					s.Input(line)

				case u := <-updates:
					c.printUpdate(u)
					shown = u.Query
					if pending == nil && u.Query == last {
						return nil
					}

				case <-drain:
					return fmt.Errorf("no suggestions for %q within %s", last, suggestDrainTimeout)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", search.DefaultDebounce, "quiet period before a query is searched")
	return cmd
}

// flushUpdates prints updates already queued without waiting for more.
func (c *cli) flushUpdates(updates <-chan search.Update) {
	for {
		select {
		case u := <-updates:
			c.printUpdate(u)
		default:
			return
		}
	}
}

func (c *cli) printUpdate(u search.Update) {
	if c.jsonOutput {
		_ = c.printJSON(u)
		return
	}
	if len(u.Suggestions) == 0 {
		fmt.Fprintf(c.out, "%q: no suggestions\n", u.Query)
		return
	}
	names := make([]string, len(u.Suggestions))
	for i, p := range u.Suggestions {
		names[i] = fmt.Sprintf("%s (%s)", p.Name, p.Brand)
	}
	fmt.Fprintf(c.out, "%q: %s\n", u.Query, strings.Join(names, ", "))
}
