package cli

import (
	"fmt"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rpggio/robolab/internal/sqlite"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := ensureDBDir(cfg.DB.Path); err != nil {
				return fmt.Errorf("prepare database path: %w", err)
			}
			db, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			pending, err := db.Pending(ctx)
			if err != nil {
				return err
			}
			if err := db.Migrate(ctx); err != nil {
				return err
			}
			version, err := db.Version(ctx)
			if err != nil {
				return err
			}

			applied := make([]string, 0, len(pending))
			for _, m := range pending {
				applied = append(applied, fmt.Sprintf("%d_%s", m.Version, m.Identifier))
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"version": version, "applied": applied})
			}
			out := cmd.OutOrStdout()
			for _, name := range applied {
				fmt.Fprintf(out, "applied %s\n", name)
			}
			_, err = fmt.Fprintf(out, "schema version %d\n", version)
			return err
		},
	}
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var listOpts robot.ListOptions
	var sort, order string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List robots",
		Example: `  # Newest first
  robolab list --sort year --order DESC

  # Search names, including archived robots
  robolab list --q droid --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd)
			if err != nil {
				return userError(err)
			}
			defer rt.Close()

			listOpts.Sort = robot.SortField(sort)
			listOpts.Order = robot.SortOrder(order)
			recs, err := rt.robots.List(cmd.Context(), listOpts)
			if err != nil {
				return userError(err)
			}
			return printRobots(cmd.OutOrStdout(), opts.jsonOutput, recs)
		},
	}

	cmd.Flags().StringVar(&listOpts.Q, "q", "", "substring of name")
	cmd.Flags().StringVar(&sort, "sort", "name", "sort field: name, year, created_at")
	cmd.Flags().StringVar(&order, "order", "ASC", "sort order: ASC or DESC")
	cmd.Flags().IntVar(&listOpts.Limit, "limit", robot.DefaultListLimit, "maximum number of robots")
	cmd.Flags().IntVar(&listOpts.Offset, "offset", 0, "number of robots to skip")
	cmd.Flags().BoolVar(&listOpts.IncludeArchived, "all", false, "include archived robots")

	return cmd
}

func newGetCommand(opts *globalOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one robot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd)
			if err != nil {
				return userError(err)
			}
			defer rt.Close()

			rec, err := rt.robots.Get(cmd.Context(), args[0], all)
			if err != nil {
				return userError(err)
			}
			if rec == nil {
				return userError(robot.ErrNotFound)
			}
			return printRobot(cmd.OutOrStdout(), opts.jsonOutput, *rec)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also look at archived robots")
	return cmd
}

func newCreateCommand(opts *globalOptions) *cobra.Command {
	var in robot.Input
	var kind string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a robot",
		Example: `  robolab create --name R2D2 --label "Astromech droid" --year 1977 --type service`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd)
			if err != nil {
				return userError(err)
			}
			defer rt.Close()

			in.Type = robot.Type(kind)
			rec, err := rt.robots.Create(cmd.Context(), in)
			if err != nil {
				return userError(err)
			}
			return printRobot(cmd.OutOrStdout(), opts.jsonOutput, *rec)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "robot name")
	cmd.Flags().StringVar(&in.Label, "label", "", "robot label")
	cmd.Flags().IntVar(&in.Year, "year", 0, "year of manufacture")
	cmd.Flags().StringVar(&kind, "type", "", "industrial, service, medical, educational or other")

	return cmd
}

func newUpdateCommand(opts *globalOptions) *cobra.Command {
	var (
		name, label, kind string
		year              int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a robot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch robot.Patch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("label") {
				patch.Label = &label
			}
			if flags.Changed("year") {
				patch.Year = &year
			}
			if flags.Changed("type") {
				t := robot.Type(kind)
				patch.Type = &t
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update: pass at least one of --name, --label, --year, --type")
			}

			rt, err := opts.open(cmd)
			if err != nil {
				return userError(err)
			}
			defer rt.Close()

			rec, err := rt.robots.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return userError(err)
			}
			return printRobot(cmd.OutOrStdout(), opts.jsonOutput, *rec)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&label, "label", "", "new label")
	cmd.Flags().IntVar(&year, "year", 0, "new year")
	cmd.Flags().StringVar(&kind, "type", "", "new type")

	return cmd
}

func newArchiveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a robot and free its name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd)
			if err != nil {
				return userError(err)
			}
			defer rt.Close()

			rec, err := rt.robots.Archive(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			return printRobot(cmd.OutOrStdout(), opts.jsonOutput, *rec)
		},
	}
}

func newUnarchiveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive <id>",
		Short: "Restore an archived robot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd)
			if err != nil {
				return userError(err)
			}
			defer rt.Close()

			rec, err := rt.robots.Unarchive(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			return printRobot(cmd.OutOrStdout(), opts.jsonOutput, *rec)
		},
	}
}

func newDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a robot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd)
			if err != nil {
				return userError(err)
			}
			defer rt.Close()

			if err := rt.robots.Remove(cmd.Context(), args[0]); err != nil {
				return userError(err)
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": args[0]})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}

func newExportCommand(opts *globalOptions) *cobra.Command {
	var dir string
	var all bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write robots to robots_export_<millis>.json",
		Long: `Write robots to a JSON file. The directory may be a local path or any URL
the afs file system understands (file://, mem://, and cloud storage when the
matching connector is linked in).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd)
			if err != nil {
				return userError(err)
			}
			defer rt.Close()

			if dir == "" {
				dir = rt.cfg.Export.Dir
			}
			res, err := rt.robots.ExportToFile(cmd.Context(), dir, all)
			if err != nil {
				return userError(err)
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d robots to %s\n", res.Count, res.URL)
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&all, "all", false, "include archived robots")

	return cmd
}
