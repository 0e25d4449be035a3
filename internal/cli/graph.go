package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/export"
	"github.com/materialkit/matdump/pkg/render"
)

// graphCommand creates the graph command for rendering reference structure.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph [library]",
		Short: "Render the material reference structure",
		Long: `Render the material reference structure.

The graph command collects every material and texture map reachable in the
library and draws the reference edges between them. Cycle-closing edges are
drawn dashed. Output formats are dot (text), svg, and png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "dot", "svg", "png":
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot, svg, or png)", format)
			}
			return c.runGraph(cmd.Context(), args[0], format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, or png")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (default <library>.<format>)")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, arg, format, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	lib, cleanup, err := c.openLibrary(ctx, cfg, arg)
	if err != nil {
		return err
	}
	defer cleanup()

	p := newProgress(c.Logger)
	g, err := render.BuildGraph(lib, cfg.Export.MaxDepth)
	if err != nil {
		return err
	}

	dot := render.ToDOT(g)
	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		if data, err = render.RenderSVG(dot); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
	case "png":
		if data, err = render.RenderPNG(dot); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render png")
		}
	}

	if output == "" {
		base := export.Sanitize(strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg)))
		output = base + "." + format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", output)
	}

	p.done(fmt.Sprintf("Rendered %d nodes, %d edges", len(g.Nodes), len(g.Edges)))
	printSuccess("%s %s", output, StyleDim.Render(fmt.Sprintf("(%d bytes)", len(data))))
	return nil
}
