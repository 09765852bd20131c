// Package cli builds the lostfound command tree. Without a subcommand it runs
// the interactive TUI; the subcommands are one-shot scripts over the same
// repositories the TUI uses.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/lostfound/internal/api"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/config"
	"github.com/robby/lostfound/internal/logging"
	"github.com/robby/lostfound/internal/repository"
	"github.com/robby/lostfound/internal/store"
	"github.com/robby/lostfound/internal/tui"
	"github.com/robby/lostfound/internal/viewmodel"
	"github.com/spf13/cobra"
)

// Options override the process streams. Nil fields use os.Stdin/Stdout/Stderr.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// env is everything a command needs, built once in PersistentPreRunE.
type env struct {
	cfg      config.Config
	sessions *auth.SessionStore
	client   *api.Client
	items    *viewmodel.Items
	auth     *viewmodel.Auth

	in  io.Reader
	out io.Writer
}

type rootFlags struct {
	configPath string
	baseURL    string
	logLevel   string
}

// NewRootCommand assembles the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	var flags rootFlags
	e := &env{in: opts.In, out: opts.Out}

	rootCmd := &cobra.Command{
		Use:   "lostfound",
		Short: "Terminal client for the lost-and-found service",
		Long: `lostfound is a terminal client for a lost-and-found service.

Run without arguments for the interactive item list, or use the
subcommands below from scripts.

Authentication:
  1. Environment variable: Set LOSTFOUND_TOKEN
  2. Session file: Run 'lostfound login'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTUI(cmd.Context())
		},
	}
	rootCmd.SetIn(opts.In)
	rootCmd.SetOut(opts.Out)
	rootCmd.SetErr(opts.Err)

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.config/lostfound/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "API base URL. Overrides the config file and LOSTFOUND_BASE_URL.")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRegisterCmd(e),
		newLoginCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
		newListCmd(e),
		newShowCmd(e),
		newAddCmd(e),
		newEditCmd(e),
		newCompletionCmd(e, "done", true),
		newCompletionCmd(e, "undone", false),
		newRemoveCmd(e),
	)
	return rootCmd
}

// setup loads config, opens the log and builds the client, repositories and
// view-models. Every command shares the same instances.
func (e *env) setup(flags rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if v := strings.TrimSpace(flags.baseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(flags.logLevel); v != "" {
		cfg.LogLevel = v
	}

	if err := logging.Init(cfg.LogFile, cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	sessions := auth.NewSessionStore(cfg.SessionPath)
	client, err := api.New(api.Options{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Tokens:            auth.DefaultProvider(sessions),
	})
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}
	logging.Debug("client ready", "base_url", client.BaseURL(), "session", sessions.Path())

	e.cfg = cfg
	e.sessions = sessions
	e.client = client
	e.items = viewmodel.NewItems(repository.NewItems(client))
	e.auth = viewmodel.NewAuth(repository.NewAuth(client, sessions))
	return nil
}

func (e *env) runTUI(ctx context.Context) error {
	app := tui.NewAppModel(ctx, e.items, e.auth, store.New())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
