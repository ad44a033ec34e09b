package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/haze/internal/engine"
	"github.com/roach88/haze/internal/ir"
)

// Error codes reported in JSON output for operation failures.
const (
	CodeNotFound     = "E_NOT_FOUND"
	CodeConflict     = "E_CONFLICT"
	CodeNoCollection = "E_NO_COLLECTION"
)

// failure reports an absent or conflicting result. In JSON mode the error
// envelope goes to stdout; the returned error carries exit code 1.
func failure(f *OutputFormatter, code, message string) error {
	if f.Format == "json" {
		if err := f.Error(code, message, nil); err != nil {
			return err
		}
	}
	return NewExitError(ExitFailure, message)
}

func parseDocument(arg string) (ir.IRObject, error) {
	doc, err := ir.ParseObject([]byte(arg))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid document JSON", err)
	}
	return doc, nil
}

// NewCreateCommand creates the create command.
func NewCreateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <collection> <json>",
		Short: "Store a new document",
		Long: `Store a new document in a collection, creating the collection if needed.

Any id or version in the input is replaced by a generated id and a fresh
version.

Example:
  haze create users '{"name":"Ann","age":30}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseDocument(args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, true, func(e *engine.Engine) error {
				created := e.Create(args[0], fields)
				return opts.formatter(cmd).Success(created)
			})
		},
	}
}

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Include []string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Fetch a document by id",
		Long: `Fetch a document by id.

Reference fields ("collection:id") named by --include are replaced by the
referenced document in the output. Dotted paths expand nested references.

Examples:
  haze get posts 0190a7c4-...
  haze get posts 0190a7c4-... --include author --include author.team`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts.RootOptions, false, func(e *engine.Engine) error {
				f := opts.formatter(cmd)
				doc, ok := e.Get(args[0], args[1], opts.Include...)
				if !ok {
					return failure(f, CodeNotFound, fmt.Sprintf("document %s not found in %q", args[1], args[0]))
				}
				return f.Success(doc)
			})
		},
	}

	cmd.Flags().StringArrayVar(&opts.Include, "include", nil, "reference path to expand (repeatable)")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <json>",
		Short: "Replace a document (optimistic concurrency)",
		Long: `Replace a stored document wholesale.

The input must carry the document's id and its current version. A missing
document or a stale version is reported as a conflict (exit code 1).

Example:
  haze update users '{"id":"0190a7c4-...","version":1729240000000,"name":"Bo"}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parseDocument(args[1])
			if err != nil {
				return err
			}
			return withSession(cmd, opts, true, func(e *engine.Engine) error {
				f := opts.formatter(cmd)
				if !e.Update(args[0], doc) {
					return failure(f, CodeConflict,
						fmt.Sprintf("update rejected: document %s in %q is absent or its version does not match", describeID(doc), args[0]))
				}
				id, _ := doc.ID()
				updated, _ := e.Get(args[0], id)
				return f.Success(updated)
			})
		},
	}
}

func describeID(doc ir.IRObject) string {
	if id, ok := doc.ID(); ok {
		return id
	}
	return "<no id>"
}

// NewDestroyCommand creates the destroy command.
func NewDestroyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <collection> <id>",
		Short: "Remove a document",
		Long: `Remove a document by id.

Fails (exit code 1) only when the collection does not exist; destroying an
id that is not stored succeeds without changing anything.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, true, func(e *engine.Engine) error {
				f := opts.formatter(cmd)
				if !e.Destroy(args[0], args[1]) {
					return failure(f, CodeNoCollection, fmt.Sprintf("collection %q does not exist", args[0]))
				}
				return f.Success(ir.IRObject{
					"collection": ir.IRString(args[0]),
					"destroyed":  ir.IRString(args[1]),
				})
			})
		},
	}
}

// IncrementOptions holds flags for the increment command.
type IncrementOptions struct {
	*RootOptions
	By string
}

// NewIncrementCommand creates the increment command.
func NewIncrementCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IncrementOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "increment <collection> <id> <key>",
		Short: "Add to a numeric field",
		Long: `Add an amount (default 1) to a numeric field of a document.

A missing or non-numeric field counts as 0. The document's version is not
changed. The reserved fields id and version are left as they are.

Examples:
  haze increment posts 0190a7c4-... views
  haze increment accounts 0190a7c4-... balance --by=-2.5`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(opts.By)
			if err != nil {
				return err
			}
			coll, id, key := args[0], args[1], args[2]
			return withSession(cmd, opts.RootOptions, true, func(e *engine.Engine) error {
				f := opts.formatter(cmd)
				if _, ok := e.Get(coll, id); !ok {
					return failure(f, CodeNotFound, fmt.Sprintf("document %s not found in %q", id, coll))
				}
				e.Increment(coll, id, key, amount)
				doc, _ := e.Get(coll, id)
				return f.Success(doc)
			})
		},
	}

	cmd.Flags().StringVar(&opts.By, "by", "1", "amount to add (integer or decimal)")

	return cmd
}

func parseAmount(s string) (ir.IRValue, error) {
	v, err := ir.ParseJSON([]byte(s))
	if err != nil || ir.KindOf(v) != ir.KindNumber {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --by amount %q: must be a number", s))
	}
	return v, nil
}
