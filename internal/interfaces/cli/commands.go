package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/seed"
)

// ValidationResult is the outcome of the validate command.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Stores   int    `json:"stores"`
	Products int    `json:"products"`
	Error    string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the catalog and report whether it is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := rootOpts.load()
			result := ValidationResult{Valid: err == nil}
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Stores = cat.Len()
				for _, s := range cat.Stores() {
					result.Products += len(s.Products)
				}
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				if encErr := writeJSON(out, result); encErr != nil {
					return encErr
				}
			} else if result.Valid {
				fmt.Fprintf(out, "OK: %d stores, %d products\n", result.Stores, result.Products)
			}
			if err != nil {
				return fmt.Errorf("catalog is invalid: %w", err)
			}
			return nil
		},
	}
}

type storeSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Products     int    `json:"products"`
	ClickCollect bool   `json:"accepts_click_collect"`
	OpenNow      bool   `json:"open_now"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stores of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseAt(at)
			if err != nil {
				return err
			}
			cat, err := rootOpts.load()
			if err != nil {
				return err
			}

			stores := cat.Stores()
			summaries := make([]storeSummary, 0, len(stores))
			for _, s := range stores {
				summaries = append(summaries, storeSummary{
					ID:           s.ID,
					Name:         s.Name,
					Category:     s.Category.String(),
					Products:     len(s.Products),
					ClickCollect: s.AcceptsClickCollect,
					OpenNow:      s.IsOpenAt(when),
				})
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRODUCTS\tOPEN")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Category, s.Products, yesNo(s.OpenNow))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate opening hours at this RFC 3339 time (default: now)")
	return cmd
}

type dayHours struct {
	Day   string `json:"day"`
	Open  string `json:"open,omitempty"`
	Close string `json:"close,omitempty"`
}

type hoursReport struct {
	StoreID string     `json:"store_id"`
	Name    string     `json:"name"`
	Week    []dayHours `json:"week"`
	At      time.Time  `json:"at"`
	OpenAt  bool       `json:"open_at"`
}

// NewHoursCommand creates the hours command.
func NewHoursCommand(rootOpts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "hours <store-id>",
		Short: "Show the weekly opening hours of a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := parseAt(at)
			if err != nil {
				return err
			}
			cat, err := rootOpts.load()
			if err != nil {
				return err
			}
			store, ok := cat.StoreByID(args[0])
			if !ok {
				return fmt.Errorf("store %q not found", args[0])
			}

			report := hoursReport{StoreID: store.ID, Name: store.Name, At: when, OpenAt: store.IsOpenAt(when)}
			for _, day := range week() {
				dh := dayHours{Day: seed.WeekdayName(day)}
				if window := store.OpeningHours.For(day); window != nil {
					dh.Open, dh.Close = window.Open, window.Close
				}
				report.Week = append(report.Week, dh)
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, report)
			}
			fmt.Fprintf(out, "%s (%s)\n", store.Name, store.ID)
			for _, dh := range report.Week {
				if dh.Open == "" {
					fmt.Fprintf(out, "  %-9s closed\n", dh.Day)
					continue
				}
				fmt.Fprintf(out, "  %-9s %s-%s\n", dh.Day, dh.Open, dh.Close)
			}
			fmt.Fprintf(out, "open at %s: %s\n", when.Format(time.RFC3339), yesNo(report.OpenAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate opening hours at this RFC 3339 time (default: now)")
	return cmd
}

// week lists the days Monday first, the way fixtures are written
func week() []time.Weekday {
	return []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
}

func parseAt(at string) (time.Time, error) {
	if at == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", at, err)
	}
	return t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
