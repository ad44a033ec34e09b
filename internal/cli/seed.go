package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/haze/internal/engine"
	"github.com/roach88/haze/internal/fixture"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture>",
		Short: "Load documents from a CUE fixture",
		Long: `Create the documents declared in a CUE fixture file or package directory.

The fixture declares a top-level "collections" struct mapping collection
names to lists of documents. Documents are created in list order, so each
gets a fresh id and version. Empty lists create empty collections.

Example:
  haze seed ./fixtures/users.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := fixture.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load fixture", err)
			}

			return withSession(cmd, opts, true, func(e *engine.Engine) error {
				seeded := fixture.Apply(e, fixtures)

				f := opts.formatter(cmd)
				if f.Format == "json" {
					return f.Success(seeded)
				}
				total := 0
				for _, s := range seeded {
					total += len(s.Created)
					f.VerboseLog("seeded %s: %d document(s)", s.Collection, len(s.Created))
				}
				return f.Success(fmt.Sprintf("Seeded %d document(s) into %d collection(s)", total, len(seeded)))
			})
		},
	}
}
