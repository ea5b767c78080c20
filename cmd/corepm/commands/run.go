package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/corepm/internal/app"
	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/ui/style"
)

// newRunCmd builds run and its target-specific aliases. An empty target
// leaves the choice to the core.
func (c *CLI) newRunCmd(use, short, target string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <core>",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			opts := app.RunOptions{Options: options(cmd), Core: args[0]}
			opts.Target, _ = cmd.Flags().GetString("target")
			opts.Tool, _ = cmd.Flags().GetString("tool")
			opts.Flags, _ = cmd.Flags().GetStringArray("flag")
			opts.WorkRoot, _ = cmd.Flags().GetString("work-root")
			opts.Lockfile, _ = cmd.Flags().GetString("lockfile")
			opts.Locked, _ = cmd.Flags().GetBool("locked")
			opts.GeneratorTimeout, _ = cmd.Flags().GetDuration("timeout")

			res, err := c.app.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			for _, core := range res.Cores {
				p.line(p.muted.Render(style.Dot) + " " + core.Name.String())
			}
			p.line(p.ok.Render(style.Check) + " " + p.heading.Render(res.Manifest.Name) + " " +
				p.muted.Render(style.Arrow) + " " + res.ManifestPath)
			return nil
		},
	}
	cmd.Flags().StringP("target", "t", target, "Target of the toplevel core")
	cmd.Flags().String("tool", "", "Tool to generate the manifest for (default: the target's default tool)")
	cmd.Flags().StringArray("flag", nil, "Extra flag in the form name or name=value (repeatable)")
	cmd.Flags().String("work-root", "", "Directory for the manifest (default: <build_root>/<core>/<target>-<tool>)")
	cmd.Flags().String("lockfile", "", "Lockfile pinning core versions")
	cmd.Flags().Bool("locked", false, "Write the resolved versions to the lockfile (default "+domain.LockFileName+")")
	cmd.Flags().Duration("timeout", app.DefaultGeneratorTimeout, "Maximum run time of a single generator")
	return cmd
}
