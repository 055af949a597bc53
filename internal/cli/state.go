package cli

import (
	"fmt"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rpggio/robolab/internal/kv"
	"github.com/rpggio/robolab/internal/robotstate"
	"github.com/rpggio/robolab/internal/sqlite"
	"github.com/rpggio/robolab/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
)

type stateOptions struct {
	*globalOptions
	backend string
	path    string
}

type stateSession struct {
	store     *robotstate.Store
	persister *robotstate.Persister
	closers   []func()
}

func (s *stateSession) Close() {
	s.persister.Close()
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// commit reports a snapshot write failure after a mutation.
func (s *stateSession) commit() error {
	if err := s.persister.LastError(); err != nil {
		return fmt.Errorf("change applied in memory but not saved: %w", err)
	}
	return nil
}

func (o *stateOptions) open(cmd *cobra.Command) (*stateSession, error) {
	cfg, logger, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	backend, path := cfg.Snapshot.Backend, cfg.Snapshot.Path
	if o.backend != "" {
		backend = o.backend
	}
	if o.path != "" {
		path = o.path
	}

	session := &stateSession{}
	var store kv.Store
	switch backend {
	case "file":
		store = kv.NewFileStore(afs.New(), path)
	case "sqlite":
		if err := ensureDBDir(cfg.DB.Path); err != nil {
			return nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.Open(cmd.Context(), cfg.DB.Path, telemetry.Component(logger, "sqlite"))
		if err != nil {
			return nil, userError(err)
		}
		session.closers = append(session.closers, func() { db.Close() })
		store = sqlite.NewKVStore(db)
	case "memory":
		store = kv.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}

	metrics := telemetry.NewMetrics(cfg.Metrics)
	session.store = robotstate.NewStore(telemetry.Component(logger, "robotstate"), robotstate.WithRecorder(metrics))
	session.persister = robotstate.NewPersister(session.store, store, robotstate.DefaultKey, telemetry.Component(logger, "snapshot"))
	if err := session.persister.Hydrate(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: snapshot could not be restored, starting empty: %v\n", err)
	}
	session.persister.Start(cmd.Context())
	return session, nil
}

func newStateCommand(global *globalOptions) *cobra.Command {
	opts := &stateOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Work with the snapshot-persisted in-memory store",
		Long: `The state commands operate on an in-memory robot store that is saved as a
versioned snapshot after every change. The snapshot lives in a file (default),
in the SQLite kv_store table, or nowhere (memory).`,
	}
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "snapshot backend: file, sqlite, memory (default from config)")
	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "snapshot directory or URL for the file backend")

	cmd.AddCommand(newStateListCommand(opts))
	cmd.AddCommand(newStateAddCommand(opts))
	cmd.AddCommand(newStateUpdateCommand(opts))
	cmd.AddCommand(newStateRemoveCommand(opts))
	cmd.AddCommand(newStateSelectCommand(opts))
	cmd.AddCommand(newStateStatsCommand(opts))
	cmd.AddCommand(newStateClearCommand(opts))

	return cmd
}

func newStateListCommand(opts *stateOptions) *cobra.Command {
	var byYear bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List robots in the snapshot store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			recs := s.store.All()
			if byYear {
				recs = s.store.SortedByYear()
			}
			return printRobots(cmd.OutOrStdout(), opts.jsonOutput, recs)
		},
	}
	cmd.Flags().BoolVar(&byYear, "by-year", false, "newest first")
	return cmd
}

func newStateAddCommand(opts *stateOptions) *cobra.Command {
	var in robot.Input
	var kind string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a robot to the snapshot store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			in.Type = robot.Type(kind)
			rec, err := s.store.Create(in)
			if err != nil {
				return userError(err)
			}
			if err := s.commit(); err != nil {
				return err
			}
			return printRobot(cmd.OutOrStdout(), opts.jsonOutput, rec)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "robot name")
	cmd.Flags().StringVar(&in.Label, "label", "", "robot label")
	cmd.Flags().IntVar(&in.Year, "year", 0, "year of manufacture")
	cmd.Flags().StringVar(&kind, "type", "", "industrial, service, medical, educational or other")

	return cmd
}

func newStateUpdateCommand(opts *stateOptions) *cobra.Command {
	var (
		name, label, kind string
		year              int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a robot in the snapshot store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			current, ok := s.store.Get(args[0])
			if !ok {
				return userError(robot.ErrNotFound)
			}
			in := robot.InputOf(current)
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = name
			}
			if flags.Changed("label") {
				in.Label = label
			}
			if flags.Changed("year") {
				in.Year = year
			}
			if flags.Changed("type") {
				in.Type = robot.Type(kind)
			}

			rec, err := s.store.Update(args[0], in)
			if err != nil {
				return userError(err)
			}
			if err := s.commit(); err != nil {
				return err
			}
			return printRobot(cmd.OutOrStdout(), opts.jsonOutput, rec)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&label, "label", "", "new label")
	cmd.Flags().IntVar(&year, "year", 0, "new year")
	cmd.Flags().StringVar(&kind, "type", "", "new type")

	return cmd
}

func newStateRemoveCommand(opts *stateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a robot from the snapshot store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Remove(args[0]); err != nil {
				return userError(err)
			}
			if err := s.commit(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return err
		},
	}
}

func newStateSelectCommand(opts *stateOptions) *cobra.Command {
	var unselect bool
	cmd := &cobra.Command{
		Use:   "select [id]",
		Short: "Show, set or clear the selected robot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			switch {
			case unselect:
				s.store.ClearSelected()
				return s.commit()
			case len(args) == 1:
				if _, ok := s.store.Get(args[0]); !ok {
					return userError(robot.ErrNotFound)
				}
				s.store.SetSelectedID(args[0])
				if err := s.commit(); err != nil {
					return err
				}
			}

			rec, ok := s.store.Selected()
			if !ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no robot selected")
				return err
			}
			return printRobot(cmd.OutOrStdout(), opts.jsonOutput, rec)
		},
	}
	cmd.Flags().BoolVar(&unselect, "clear", false, "clear the selection")
	return cmd
}

func newStateStatsCommand(opts *stateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the snapshot store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			stats := s.store.Stats()
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total: %d\n", stats.Total)
			for _, t := range robot.Types() {
				if n := stats.ByType[t]; n > 0 {
					fmt.Fprintf(out, "  %s: %d\n", t, n)
				}
			}
			if stats.Total > 0 {
				fmt.Fprintf(out, "years: %d to %d, average %d\n", stats.OldestYear, stats.NewestYear, stats.AverageYear)
			}
			return nil
		},
	}
}

func newStateClearCommand(opts *stateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every robot from the snapshot store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			s.store.ClearAll()
			return s.commit()
		},
	}
}
