// Package cli implements catalogctl, the operator tool for venue catalog
// fixtures.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/seed"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	SeedFile string
	Format   string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the catalogctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Inspect and validate click-and-collect catalogs",
		Long: `catalogctl loads a venue catalog the same way the server does and
reports on it. Without --seed the embedded catalog is used.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.SeedFile, "seed", "s", "", "catalog YAML file (default: embedded catalog)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHoursCommand(opts))

	return cmd
}

func (o *RootOptions) load() (*catalog.Catalog, error) {
	return seed.LoadFile(o.SeedFile)
}
