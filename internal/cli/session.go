package cli

import (
	"context"
	"fmt"

	"github.com/roach88/haze/internal/engine"
	"github.com/roach88/haze/internal/store"
)

// session is one command's view of the snapshot database: the store it
// was loaded from and an engine holding the restored registry.
type session struct {
	store  *store.Store
	engine *engine.Engine
	path   string
}

// openSession opens the database and restores its snapshot into a fresh
// engine. Restoring emits no events.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database configured (use --db or "+EnvDatabase+")")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	snaps, err := st.Load(ctx)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load snapshot", err)
	}

	eng := engine.New(engine.WithLogger(opts.Logger()))
	eng.Restore(snaps)
	opts.Logger().Debug("snapshot loaded", "path", opts.Database, "collections", len(snaps))

	return &session{store: st, engine: eng, path: opts.Database}, nil
}

// save writes the engine's registry back to the database.
func (s *session) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.engine.Snapshot()); err != nil {
		return WrapExitError(ExitCommandError, "failed to save snapshot", err)
	}
	return nil
}

func (s *session) Close() error {
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("failed to close database %s: %w", s.path, err)
	}
	return nil
}

// withSession runs fn against a loaded session. When mutate is true and fn
// succeeds, the registry is saved before the session closes.
func withSession(cmd contextCommand, opts *RootOptions, mutate bool, fn func(*engine.Engine) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := fn(s.engine); err != nil {
		return err
	}
	if mutate {
		return s.save(ctx)
	}
	return nil
}

// contextCommand is the part of *cobra.Command withSession needs.
type contextCommand interface {
	Context() context.Context
}
