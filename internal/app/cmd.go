package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hitoshi/inspiration/internal/database"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker はワーカーモードで起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// NewRootCommand はinspirationのcobraコマンドツリーを構築する。
// サブコマンドなしで起動した場合はserveとして動作する。
// wはログ出力先で、nilの場合はos.Stdoutを使用する。
func NewRootCommand(w io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "inspiration",
		Short:         "Inspiration backend: ideas, votes, coins, chat and projects",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, w)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   string(CommandServe),
			Short: "Start the HTTP API server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd, w)
			},
		},
		&cobra.Command{
			Use:   string(CommandWorker),
			Short: "Run background jobs (expired session cleanup)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := initCommand(w, CommandWorker)
				if err != nil {
					return err
				}
				return runWorker(cmd.Context(), cfg)
			},
		},
		newMigrateCommand(w),
		&cobra.Command{
			Use:   string(CommandHealthcheck),
			Short: "Probe the local /health endpoint (for container health checks)",
			Args:  cobra.NoArgs,
			// 軽量サブコマンドのため、フル初期化をスキップする
			RunE: func(cmd *cobra.Command, args []string) error {
				port := os.Getenv("SERVER_PORT")
				if port == "" {
					port = "8080"
				}
				return runHealthcheck(cmd.Context(), port)
			},
		},
	)

	return root
}

func serve(cmd *cobra.Command, w io.Writer) error {
	cfg, err := initCommand(w, CommandServe)
	if err != nil {
		return err
	}
	return runServe(cmd.Context(), cfg)
}

// newMigrateCommand はmigrateコマンドとup/down/versionサブコマンドを構築する。
// サブコマンドなしのmigrateはupとして動作する。
func newMigrateCommand(w io.Writer) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   string(CommandMigrate),
		Short: "Apply or inspect database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initCommand(w, CommandMigrate)
			if err != nil {
				return err
			}
			return runMigrate(cfg)
		},
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := initCommand(w, CommandMigrate)
				if err != nil {
					return err
				}
				return runMigrate(cfg)
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("invalid steps %q: must be a positive integer", args[0])
					}
					steps = n
				}
				cfg, err := initCommand(w, CommandMigrate)
				if err != nil {
					return err
				}
				if err := database.RollbackMigrations(cfg.DatabaseURL, steps); err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				slog.Info("database migrations rolled back", slog.Int("steps", steps))
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := initCommand(w, CommandMigrate)
				if err != nil {
					return err
				}
				version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
				if err != nil {
					return fmt.Errorf("failed to read migration version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
				return nil
			},
		},
	)

	return migrateCmd
}
