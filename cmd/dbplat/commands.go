package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dbplat/internal/core"
	"dbplat/internal/detect"
	"dbplat/internal/output"
	"dbplat/internal/parser"
	"dbplat/internal/platform"
)

func (a *app) detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Connect and print the detected database identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			db, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := detect.New(detect.WithLogger(a.logger)).Detect(ctx, db)
			if err != nil {
				return err
			}
			return a.print(a.formatter.FormatIdentity(id))
		},
	}
}

func (a *app) inspectCmd() *cobra.Command {
	var platformName string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Read the live schema with the detected platform's reader",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			db, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			p, err := a.resolve(ctx, db, platformName)
			if err != nil {
				return err
			}
			model, err := p.ReadSchema(ctx, db)
			if err != nil {
				return err
			}
			return a.print(a.formatter.FormatSchema(model))
		},
	}
	cmd.Flags().StringVarP(&platformName, "platform", "p", "", "Platform to read with (default: detect)")
	return cmd
}

func (a *app) capabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities [dialect]",
		Short: "Print the resolved capability flags and base chain of a platform",
		Long: "Print the resolved capability flags and base chain of the named platform.\n" +
			"Without a dialect argument the platform is detected over --dsn.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p *platform.Platform
			if len(args) == 1 {
				var err error
				if p, err = a.registry.ResolveName(args[0]); err != nil {
					return err
				}
			} else {
				ctx, cancel := a.withTimeout(cmd.Context())
				defer cancel()

				db, err := a.connect(ctx)
				if err != nil {
					return fmt.Errorf("dialect argument or connection required: %w", err)
				}
				defer db.Close()
				if p, _, err = a.registry.ResolveConnection(ctx, db); err != nil {
					return err
				}
			}
			return a.print(a.formatter.FormatPlatforms([]output.PlatformInfo{a.describe(p)}))
		},
	}
}

func (a *app) platformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List every registered platform",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			names := a.registry.Names()
			infos := make([]output.PlatformInfo, 0, len(names))
			for _, name := range names {
				p, err := a.registry.ResolveName(name)
				if err != nil {
					return err
				}
				infos = append(infos, a.describe(p))
			}
			return a.print(a.formatter.FormatPlatforms(infos))
		},
	}
}

// loadSchema parses path and resolves the platform to render it for: the
// explicit name, else the dialect recorded in the file.
func (a *app) loadSchema(path, platformName string) (*core.Database, *platform.Platform, error) {
	model, err := parser.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	name := platformName
	if name == "" {
		name = string(model.Dialect)
	}
	if name == "" {
		return nil, nil, fmt.Errorf("%s declares no dialect; pass --platform", path)
	}
	p, err := a.registry.ResolveName(name)
	if err != nil {
		return nil, nil, err
	}
	return model, p, nil
}

func (a *app) ddlCmd() *cobra.Command {
	var platformName, outFile string
	cmd := &cobra.Command{
		Use:   "ddl <schema.toml|dump.sql>",
		Short: "Generate a platform's DDL from an offline schema source",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			model, p, err := a.loadSchema(args[0], platformName)
			if err != nil {
				return err
			}
			stmts, err := p.Statements(model)
			if err != nil {
				return err
			}

			if outFile == "" {
				return a.print(a.formatter.FormatDDL(p.Name(), stmts))
			}
			f, err := os.Create(outFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			if err := output.WriteDDL(f, p.Name(), stmts); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to write output: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			a.printInfo(fmt.Sprintf("DDL for %s saved to %s", p.Name(), outFile))
			return nil
		},
	}
	cmd.Flags().StringVarP(&platformName, "platform", "p", "", "Target platform (default: the dialect declared by the source)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write the SQL script to a file")
	return cmd
}
