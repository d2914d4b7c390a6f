package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/postreview/internal/config"
	"github.com/fakeyudi/postreview/internal/logger"
	"github.com/fakeyudi/postreview/internal/profile"
	"github.com/fakeyudi/postreview/internal/runner"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded user profile.
var activeProfile *profile.Profile

// log is the command logger, built from --log-level and config.
var log = zerolog.Nop()

// runTool runs p4 and git. nil runs real subprocesses.
var runTool runner.RunFunc

var (
	logLevel  string
	logFormat string
	verbose   bool

	flagP4Port   string
	flagP4Client string
	flagP4User   string
	flagP4Passwd string
	flagGitPath  string
	flagDir      string
)

var rootCmd = &cobra.Command{
	Use:           "postreview",
	Short:         "Turn Perforce changelists and Git commits into code review requests",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		config.LoadDotEnv()

		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() && term.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "  Welcome to postreview! Looks like this is your first time.")
			if err := runSetup(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
		}

		activeProfile = nil
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)
		config.ApplyEnv(&cfg, os.Getenv)

		// Profile values fill in config gaps.
		if activeProfile != nil {
			applyProfile(&cfg, activeProfile)
		}
		applyFlags(&cfg)

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log = logger.New(level, logFormat, cmd.ErrOrStderr())
		return nil
	},
}

func applyProfile(c *config.Config, p *profile.Profile) {
	d := config.Defaults()
	if c.User == "" || c.User == os.Getenv("USER") {
		if p.User != "" {
			c.User = p.User
		}
	}
	if c.Project == d.Project && p.Project != "" {
		c.Project = p.Project
	}
	if c.ServerURL == d.ServerURL && p.ServerURL != "" {
		c.ServerURL = p.ServerURL
	}
	if c.DefaultFormat == d.DefaultFormat && p.DefaultFormat != "" {
		c.DefaultFormat = p.DefaultFormat
	}
	if c.OutputDir == d.OutputDir && p.OutputDir != "" {
		c.OutputDir = p.OutputDir
	}
}

func applyFlags(c *config.Config) {
	set := func(field *string, v string) {
		if v != "" {
			*field = v
		}
	}
	set(&c.P4Port, flagP4Port)
	set(&c.P4Client, flagP4Client)
	set(&c.P4User, flagP4User)
	set(&c.P4Password, flagP4Passwd)
	set(&c.GitPath, flagGitPath)
	set(&c.LogLevel, logLevel)
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log every command run (same as --log-level debug)")
	pf.StringVar(&flagP4Port, "p4port", "", "Perforce server address (overrides P4PORT)")
	pf.StringVar(&flagP4Client, "p4client", "", "Perforce client workspace (overrides P4CLIENT)")
	pf.StringVar(&flagP4User, "p4user", "", "Perforce user (overrides P4USER)")
	pf.StringVar(&flagP4Passwd, "p4passwd", "", "Perforce password (overrides P4PASSWD)")
	pf.StringVar(&flagGitPath, "git-path", "", "path to the git executable")
	pf.StringVar(&flagDir, "dir", "", "directory to run p4 and git in")
}
