package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect the configured core libraries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the cores roots and registered libraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.app.Libraries(options(cmd))
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			config := cfg.Path
			if config == "" {
				config = p.muted.Render("none")
			}
			p.line(p.label.Render("Configuration:") + " " + config)
			p.field("Cache root", cfg.CacheRoot)
			p.field("Build root", cfg.BuildRoot)
			p.list("Cores roots", cfg.CoresRoots)

			rows := make([][2]string, 0, len(cfg.Libraries))
			for _, l := range cfg.Libraries {
				rows = append(rows, [2]string{l.Name, l.Location})
			}
			if len(rows) > 0 {
				p.line(p.label.Render("Libraries:"))
				p.table(rows)
			}
			return nil
		},
	})

	return cmd
}
