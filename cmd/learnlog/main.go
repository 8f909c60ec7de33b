package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	learnlog "github.com/unowned-ai/learnlog/pkg"
	"github.com/unowned-ai/learnlog/pkg/config"
	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/logging"
	"github.com/unowned-ai/learnlog/pkg/utils"
)

var (
	dbPath     string
	walMode    bool
	syncMode   string
	configPath string
	envFile    string
	backupDir  string
	logLevel   string
	logFormat  string

	// Resolved in PersistentPreRunE from defaults, files, environment and flags.
	cfg    config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:     "learnlog",
	Short:   "A daily learning journal that keeps track of the days you skipped.",
	Long:    ``,
	Version: fmt.Sprintf("v%s", learnlog.Version),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for learnlog.

The command prints a completion script to stdout. You can source it in your shell
or install it to the appropriate location for your shell to enable completions permanently.

Examples:

  Bash (current shell):
    $ source <(learnlog completion bash)

  Bash (persist):
    $ learnlog completion bash > /etc/bash_completion.d/learnlog

  Zsh:
    $ learnlog completion zsh > "${fpath[1]}/_learnlog"

  Fish:
    $ learnlog completion fish | source
    $ learnlog completion fish > ~/.config/fish/completions/learnlog.fish

  PowerShell:
    PS> learnlog completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of learnlog",
	Long:  `All software has versions. This is learnlog's`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(learnlog.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the learnlog database",
	Long:  `Provides commands for managing the learnlog SQLite database, including schema upgrades.`,
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the learnlog database schema to the latest version for the ledgerdb component",
	Long: `Connects to the SQLite database (the --db flag, the config file or the platform default) and applies any
necessary schema migrations to bring the ledgerdb component up to the current application schema version.
Journals created by releases that predate tags gain the tags column; their days and entries are kept.
If the database does not exist it is created and initialized with the latest schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
		if err != nil {
			return err
		}

		fmt.Printf("Attempting to upgrade ledgerdb component in database at: %s (WAL: %t, Sync: %s)\n", path, cfg.WAL, cfg.Sync)

		dbConn, err := pkgdb.OpenDBConnection(path, cfg.WAL, cfg.Sync)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		before, err := pkgdb.GetComponentSchemaVersion(dbConn, pkgdb.LedgerDBComponent)
		if err != nil {
			return err
		}
		if err := pkgdb.UpgradeDB(dbConn, path, pkgdb.TargetSchemaVersion, logger); err != nil {
			return err
		}
		after, err := pkgdb.GetComponentSchemaVersion(dbConn, pkgdb.LedgerDBComponent)
		if err != nil {
			return err
		}

		if before == after {
			fmt.Printf("Schema already at version %d.\n", after)
		} else {
			fmt.Printf("Schema upgraded to version %d.\n", after)
		}
		return nil
	},
}

// loadConfig layers the persistent flags over config.Load and sets up the
// logger. Only flags given on the command line override lower layers.
func loadConfig(cmd *cobra.Command) error {
	c, sources, err := config.Load(config.Options{ConfigPath: configPath, EnvFile: envFile})
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("wal") {
		c.WAL = walMode
	}
	if flags.Changed("sync") {
		c.Sync = strings.ToUpper(syncMode)
	}
	if flags.Changed("backup-dir") {
		c.BackupDir = backupDir
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if err := config.Validate(c); err != nil {
		return err
	}

	l, err := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	if err != nil {
		return err
	}

	cfg, logger = c, l
	logger.Debug().
		Str("config_file", sources.ConfigFile).
		Str("env_file", sources.EnvFile).
		Str("db", cfg.DBPath).
		Msg("configuration loaded")
	return nil
}

func initCmd() {
	// Defaults shown here are the built-in ones; config files and LEARNLOG_* variables may change them.
	defaults := config.Default()
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (uses a system-specific default if not provided)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", defaults.WAL, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", defaults.Sync, "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON/JSONC config file (default $XDG_CONFIG_HOME/learnlog/config.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file with LEARNLOG_* variables (default ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "", "Directory for database backups (default <db dir>/backups)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaults.LogFormat, "Log format (text, json)")

	dbCmd.AddCommand(dbUpgradeCmd)

	initEntriesCmd()
	initStatsCmd()
	initMissedCmd()
	initExportCmd()
	rootCmd.AddCommand(
		completionCmd, versionCmd, dbCmd,
		addCmd, todayCmd, entriesCmd, tagsCmd,
		statsCmd, daysCmd, heatmapCmd,
		missedCmd, backupCmd, exportCmd,
		tuiCmd, mcpCmd,
	)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
