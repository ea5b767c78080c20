package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/corepm/internal/core/domain"
)

func (c *CLI) newCoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "core",
		Short: "Inspect the cores in the library",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all discovered cores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cores, err := c.app.ListCores(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(cores) == 0 {
				p.line(p.muted.Render("no cores found"))
				return nil
			}
			rows := make([][2]string, 0, len(cores))
			for _, core := range cores {
				rows = append(rows, [2]string{core.Name.String(), core.Description})
			}
			p.table(rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <core>",
		Short: "Show the description of a core",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := c.app.ShowCore(cmd.Context(), options(cmd), args[0])
			if err != nil {
				return err
			}
			printCore(newPrinter(cmd.OutOrStdout()), core)
			return nil
		},
	})

	return cmd
}

func printCore(p *printer, core *domain.Core) {
	p.line(p.heading.Render(core.Name.String()))
	p.field("Description", core.Description)
	p.field("Path", core.Path)
	p.field("CAPI", strconv.Itoa(core.CAPI))

	virtual := make([]string, 0, len(core.Virtual))
	for _, v := range core.Virtual {
		virtual = append(virtual, v.String())
	}
	p.list("Provides", virtual)

	targets := make([]string, 0, len(core.Targets))
	for _, name := range sortedKeys(core.Targets) {
		t := core.Targets[name]
		entry := name
		if t.DefaultTool != "" {
			entry += " " + p.muted.Render("("+t.DefaultTool+")")
		}
		if t.Description != "" {
			entry += " " + p.muted.Render(t.Description)
		}
		targets = append(targets, entry)
	}
	p.list("Targets", targets)

	filesets := make([]string, 0, len(core.Filesets))
	for _, name := range sortedKeys(core.Filesets) {
		fs := core.Filesets[name]
		entry := name + " " + p.muted.Render(strconv.Itoa(len(fs.Files))+" files")
		if len(fs.Depend) > 0 {
			entry += " " + p.muted.Render("depends "+strings.Join(fs.Depend, ", "))
		}
		filesets = append(filesets, entry)
	}
	p.list("Filesets", filesets)

	p.list("Parameters", sortedKeys(core.Parameters))
	p.list("Generators", sortedKeys(core.Generators))
	p.list("Generate", sortedKeys(core.Generate))
}
