package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/haze/internal/engine"
	"github.com/roach88/haze/internal/queryir"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <json>",
		Short: "Filter, sort and page a collection",
		Long: `Evaluate a query against a collection.

The query is a JSON object:

  {"collection": "tasks",
   "where": [["count", "gt", 4], ["title", "iprefix", "a"]],
   "combine": "and",
   "sort": "-count", "skip": 0, "limit": 10,
   "count": false,
   "include": ["owner"]}

Operators: eq neq gt ge lt le in nin exists nexists
           prefix suffix contains iprefix isuffix icontains

A query naming an unknown operator returns no documents. Lint findings are
logged with --verbose.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := queryir.Decode([]byte(args[0]))
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid query", err)
			}

			f := opts.formatter(cmd)
			for _, w := range queryir.Validate(q).Warnings {
				f.VerboseLog("warning: %s", w)
			}

			return withSession(cmd, opts, false, func(e *engine.Engine) error {
				return f.Success(e.Query(q))
			})
		},
	}
}

// CollectionInfo describes one collection in the collections listing.
type CollectionInfo struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

// NewCollectionsCommand creates the collections command.
func NewCollectionsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "collections",
		Short:         "List collections and their sizes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, false, func(e *engine.Engine) error {
				names := e.Collections()
				infos := make([]CollectionInfo, 0, len(names))
				for _, name := range names {
					infos = append(infos, CollectionInfo{Name: name, Documents: e.Len(name)})
				}

				f := opts.formatter(cmd)
				if f.Format == "json" {
					return f.Success(infos)
				}
				if len(infos) == 0 {
					return f.Success("No collections.")
				}
				for _, info := range infos {
					if err := f.Success(fmtCollection(info)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func fmtCollection(info CollectionInfo) string {
	noun := "documents"
	if info.Documents == 1 {
		noun = "document"
	}
	return fmt.Sprintf("%s\t%d %s", info.Name, info.Documents, noun)
}
