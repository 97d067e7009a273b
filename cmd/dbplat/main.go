// Command dbplat detects database dialects, reports platform capabilities,
// reads live schemas and generates platform-specific DDL.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"dbplat/internal/config"
	"dbplat/internal/dberr"
	_ "dbplat/internal/dialect/mysql"
	_ "dbplat/internal/dialect/postgresql"
	_ "dbplat/internal/introspect/greenplum"
	_ "dbplat/internal/introspect/mysql"
	_ "dbplat/internal/introspect/postgresql"
	"dbplat/internal/output"
	"dbplat/internal/platform"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	format     string

	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	logger    *slog.Logger
	registry  *platform.Registry
	formatter output.Formatter
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:          "dbplat",
		Short:        "Database platform detection, capabilities and DDL",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Config file (.toml, .yaml or .yml)")
	pf.StringVarP(&a.format, "format", "f", "human", "Output format: human, json, or summary")
	pf.String("dsn", "", "Database connection string")
	pf.String("driver", config.DefaultDriver, "database/sql driver: "+strings.Join(config.Drivers, ", "))
	pf.Duration("timeout", config.DefaultTimeout, "Timeout for database operations")
	pf.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	pf.String("log-format", config.DefaultLogFormat, "Log format: text or json")
	pf.String("platforms", "", "Extra platform registrations (TOML)")

	rootCmd.AddCommand(
		a.detectCmd(),
		a.inspectCmd(),
		a.capabilitiesCmd(),
		a.platformsCmd(),
		a.ddlCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(a.stderr)
	if err != nil {
		return err
	}
	registry, err := config.NewRegistry(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build platform registry: %w", err)
	}
	formatter, err := output.NewFormatter(a.format)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.registry, a.formatter = cfg, logger, registry, formatter
	return nil
}

// printInfo writes a status line. With JSON output it goes to stderr so
// stdout stays machine-readable.
func (a *app) printInfo(msg string) {
	if strings.EqualFold(strings.TrimSpace(a.format), string(output.FormatJSON)) {
		_, _ = fmt.Fprintln(a.stderr, msg)
		return
	}
	_, _ = fmt.Fprintln(a.stdout, msg)
}

func (a *app) print(s string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = io.WriteString(a.stdout, s)
	return err
}

// withTimeout returns a context bounded by the configured timeout. A zero
// timeout means no deadline.
func (a *app) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Connection.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.cfg.Connection.Timeout)
}

var errNoDSN = errors.New("no DSN configured; set --dsn, DBPLAT_DSN or connection.dsn")

// connect opens and pings the configured database.
func (a *app) connect(ctx context.Context) (*sql.DB, error) {
	if a.cfg.Connection.DSN == "" {
		return nil, errNoDSN
	}
	db, err := sql.Open(a.cfg.Connection.Driver, a.cfg.Connection.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			a.logger.Warn("failed to close connection", "error", closeErr)
		}
		return nil, &dberr.ConnectionError{Op: "ping", Err: pingErr}
	}
	a.logger.Debug("connected", "driver", a.cfg.Connection.Driver)
	return db, nil
}

// resolve returns the named platform, or detects it over db when name is
// empty.
func (a *app) resolve(ctx context.Context, db *sql.DB, name string) (*platform.Platform, error) {
	if name != "" {
		return a.registry.ResolveName(name)
	}
	p, _, err := a.registry.ResolveConnection(ctx, db)
	return p, err
}

// describe builds the printable view of p including the flags its own
// registration overrides.
func (a *app) describe(p *platform.Platform) output.PlatformInfo {
	var overrides []string
	if reg, ok := a.registry.Lookup(p.Name()); ok {
		overrides = reg.Delta.Overridden()
	}
	return output.Describe(p, overrides)
}
