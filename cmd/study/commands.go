package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/studyhall/internal/config"
	"github.com/phrazzld/studyhall/internal/domain"
	"github.com/phrazzld/studyhall/internal/domain/srs"
	"github.com/phrazzld/studyhall/internal/platform/postgres"
	"github.com/phrazzld/studyhall/internal/query"
	"github.com/phrazzld/studyhall/internal/service"
	"github.com/phrazzld/studyhall/internal/store"
)

// errNeedsPostgres is returned by migrate for any other storage driver.
var errNeedsPostgres = errors.New("migrations only apply to the postgres storage driver")

// withLibrary opens the library for the duration of fn.
func (c *cli) withLibrary(ctx context.Context, autoSeed bool, fn func(*store.Library) error) (err error) {
	lib, err := c.openLibrary(ctx, autoSeed)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := lib.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close storage: %w", cerr)
		}
	}()
	return fn(lib)
}

func (c *cli) newDueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List flashcards due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withLibrary(cmd.Context(), true, func(lib *store.Library) error {
				cards := query.NewEngine(lib, nil).Due()
				if len(cards) == 0 {
					_, err := fmt.Fprintln(c.out, "No cards due.")
					return err
				}
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDECK\tFRONT\tDUE")
				for _, card := range cards {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						card.ID, deckLabel(card), card.Front, card.NextReviewDate.Format(time.DateOnly))
				}
				return tw.Flush()
			})
		},
	}
}

func deckLabel(c domain.Flashcard) string {
	if tag := c.PrimaryTag(); tag != "" {
		return tag
	}
	return query.DefaultDeck
}

func (c *cli) newDecksCommand() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "Show flashcards grouped into decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withLibrary(cmd.Context(), true, func(lib *store.Library) error {
				decks := query.NewEngine(lib, nil).Decks(filter)
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "DECK\tCARDS\tDUE")
				for _, d := range decks {
					fmt.Fprintf(tw, "%s\t%d\t%d\n", d.Name, len(d.Cards), d.DueCount)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "query", "q", "", "only include cards matching this text")
	return cmd
}

// parseRating accepts a 0-5 quality or one of the outcome buttons.
func parseRating(raw string) (quality int, outcome srs.Outcome, isQuality bool) {
	if q, err := strconv.Atoi(raw); err == nil {
		return q, "", true
	}
	return 0, srs.Outcome(raw), false
}

func (c *cli) newReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review <card-id> <quality|again|hard|good|easy>",
		Short: "Record a review of one flashcard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid card ID %q: %w", args[0], err)
			}

			return c.withLibrary(cmd.Context(), true, func(lib *store.Library) error {
				reviews := service.NewReviewService(lib, c.srsService(), c.logger)

				var card domain.Flashcard
				quality, outcome, isQuality := parseRating(args[1])
				if isQuality {
					card, err = reviews.Review(cmd.Context(), id, quality)
				} else {
					card, err = reviews.ReviewOutcome(cmd.Context(), id, outcome)
				}
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(c.out, "Next review %s (interval %s, ease %.2f)\n",
					card.NextReviewDate.Format(time.RFC3339), card.Interval, card.EaseFactor)
				return err
			})
		},
	}
}

func (c *cli) newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample data into an empty library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withLibrary(cmd.Context(), false, func(lib *store.Library) error {
				seeded, err := c.seedLibrary(cmd.Context(), lib, file)
				if err != nil {
					return err
				}
				msg := "Library already has materials; nothing seeded."
				if seeded {
					msg = "Sample data loaded."
				}
				_, err = fmt.Fprintln(c.out, msg)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file (default: bundled sample)")
	return cmd
}

func (c *cli) newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print library statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withLibrary(cmd.Context(), true, func(lib *store.Library) error {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(query.NewEngine(lib, nil).Stats())
			})
		},
	}
}

func (c *cli) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|reset|status|version]",
		Short:     "Run database migrations for the postgres storage driver",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "reset", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Storage.Driver != config.DriverPostgres {
				return errNeedsPostgres
			}
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			b, err := postgres.Open(cmd.Context(), c.cfg.Storage.PostgresURL, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			if err := postgres.Migrate(b.DB(), command, c.logger); err != nil {
				return err
			}
			c.logger.Info("migration completed", "command", command)
			return nil
		},
	}
}
