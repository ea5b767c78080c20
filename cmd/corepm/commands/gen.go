package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/corepm/internal/ui/style"
)

func (c *CLI) newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Inspect generators and their cached output",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the generators defined by discovered cores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gens, err := c.app.ListGenerators(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(gens) == 0 {
				p.line(p.muted.Render("no generators found"))
				return nil
			}
			rows := make([][2]string, 0, len(gens))
			for _, g := range gens {
				rows = append(rows, [2]string{g.Name, g.Owner.String()})
			}
			p.table(rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <generator>",
		Short: "Show a generator and its cache entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gens, err := c.app.ShowGenerator(cmd.Context(), options(cmd), args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			for _, g := range gens {
				p.line(p.heading.Render(g.Name) + " " + p.muted.Render(style.Arrow+" "+g.Owner.String()))
				p.field("Description", g.Generator.Description)
				p.field("Command", g.Generator.Command)
				p.field("Interpreter", g.Generator.Interpreter)
				p.field("Cache", g.Generator.CacheType)
				p.list("File parameters", g.Generator.FileInputParameters)
			}

			entries := gens[0].Entries
			if len(entries) == 0 {
				p.line(p.muted.Render("no cache entries"))
				return nil
			}
			rows := make([][2]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, [2]string{e.Instance, e.Key + " " + e.CreatedAt.Format("2006-01-02 15:04:05")})
			}
			p.line(p.label.Render("Cache entries:"))
			p.table(rows)
			return nil
		},
	})

	return cmd
}
