package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/materialkit/matdump/pkg/config"
	"github.com/materialkit/matdump/pkg/encode"
	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/export"
	"github.com/materialkit/matdump/pkg/scene"
)

// exportCommand creates the export command for writing material documents.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		styleName   string
		outDir      string
		maxDepth    int
		materials   []string
		interactive bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "export [library]",
		Short: "Export a material library as typed text documents",
		Long: `Export a material library as typed text documents.

Each top-level material becomes one output file named after the sanitized
material name. Texture-map references are expanded inline; cyclic references
and over-deep chains are replaced by placeholders so the export always
completes.

For the json scene source the argument is a scene file path; for the mongo
source it is the stored library name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if styleName != "" {
				cfg.Export.Style = styleName
			}
			if outDir != "" {
				cfg.Export.OutDir = outDir
			}
			if cmd.Flags().Changed("max-depth") {
				cfg.Export.MaxDepth = maxDepth
			}
			if err := errors.ValidateStyleName(cfg.Export.Style); err != nil {
				return err
			}
			for _, m := range materials {
				if err := errors.ValidateMaterialFilter(m); err != nil {
					return err
				}
			}
			return c.runExport(cmd.Context(), cfg.Export.Style, cfg, args[0], materials, interactive, noCache)
		},
	}

	cmd.Flags().StringVarP(&styleName, "style", "s", "", "output style: flow, tagged, or prefixed")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "reference chain depth cap")
	cmd.Flags().StringSliceVarP(&materials, "material", "m", nil, "export only the named materials (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick materials interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable skip-unchanged caching")

	return cmd
}

// runExport opens the library, selects the materials, and runs the batch.
func (c *CLI) runExport(ctx context.Context, styleName string, cfg *config.Config, arg string, filter []string, interactive, noCache bool) error {
	style, err := encode.ParseStyle(styleName)
	if err != nil {
		return err
	}

	ctx = withLogger(ctx, c.Logger)

	lib, cleanup, err := c.openLibrary(ctx, cfg, arg)
	if err != nil {
		return err
	}
	defer cleanup()

	docCache := c.newCache(ctx, cfg, noCache)
	defer func() { _ = docCache.Close() }()

	asm := &export.Assembler{
		Style:    style,
		MaxDepth: cfg.Export.MaxDepth,
		Writer:   &export.DirWriter{Dir: cfg.Export.OutDir},
		Cache:    docCache,
		Logger:   c.Logger,
	}

	var summary *export.Summary
	switch {
	case interactive:
		all, merr := lib.Materials()
		if merr != nil {
			return errors.Wrap(errors.ErrCodeSceneLoad, merr, "enumerate materials of %q", lib.Name())
		}
		picked, perr := pickMaterials(all)
		if perr != nil {
			return perr
		}
		if len(picked) == 0 {
			printInfo("nothing selected")
			return nil
		}
		summary = asm.ExportSelection(ctx, lib.Name(), picked)

	case len(filter) > 0:
		selected, serr := selectMaterials(lib, filter)
		if serr != nil {
			return serr
		}
		summary = asm.ExportSelection(ctx, lib.Name(), selected)

	default:
		spinner := newSpinner(ctx, "Exporting "+lib.Name()+"...")
		spinner.Start()
		summary, err = asm.Export(ctx, lib)
		spinner.Stop()
		if err != nil {
			return err
		}
	}

	printSummary(summary)
	if summary.Failed() > 0 {
		return errors.New(errors.ErrCodeWrite, "%d of %d materials failed", summary.Failed(), len(summary.Outcomes))
	}
	return nil
}

// selectMaterials resolves a name filter against the library, preserving
// library order. Every requested name must exist.
func selectMaterials(lib scene.Library, filter []string) ([]scene.Node, error) {
	all, err := lib.Materials()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "enumerate materials of %q", lib.Name())
	}

	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		wanted[name] = true
	}

	var selected []scene.Node
	for _, m := range all {
		if wanted[m.Name()] {
			selected = append(selected, m)
			delete(wanted, m.Name())
		}
	}

	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for name := range wanted {
			missing = append(missing, name)
		}
		return nil, errors.New(errors.ErrCodeMaterialNotFound, "materials not found in %q: %s", lib.Name(), strings.Join(missing, ", "))
	}
	return selected, nil
}
