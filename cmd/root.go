package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/killallgit/realty/pkg/config"
	"github.com/killallgit/realty/pkg/headless"
	"github.com/killallgit/realty/pkg/logger"
	"github.com/killallgit/realty/pkg/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "realty",
	Short: "Chat with the real estate assistant",
	Long: `Terminal client for the real estate multi-agent assistant.

Ask about property issues, tenancy agreements or anything else and the
backend routes the question to the right specialist agent. Replies stream
in as they are written.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("headless") {
			return runHeadless(cmd)
		}
		return runTUI(cmd.Context())
	},
}

func runTUI(ctx context.Context) error {
	cfg := config.Get()
	pres := newPresenter(cfg)
	ctrl := newChatController(cfg, newAPIClient(cfg))

	app := tui.NewApp(ctx, ctrl, pres, tui.Options{WordWrap: cfg.UI.WordWrap})

	config.Watch(func(updated *config.Config, err error) {
		if err != nil {
			logger.Warn("Ignoring invalid settings change: %v", err)
			return
		}
		logger.Info("Settings changed, reloading %d agent profiles", len(updated.Agents.Profiles))
		app.ReloadProfiles(profilesFor(updated))
	})

	return app.Run()
}

func runHeadless(cmd *cobra.Command) error {
	cfg := config.Get()
	ctrl := newChatController(cfg, newAPIClient(cfg))

	return headless.Run(cmd.Context(), ctrl, viper.GetString("prompt"), headless.Options{
		ImagePath: viper.GetString("image"),
		Render:    viper.GetBool("render"),
		Presenter: newPresenter(cfg),
		Out:       cmd.OutOrStdout(),
		ErrOut:    cmd.ErrOrStderr(),
	})
}

func initConfig(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(cfgFile); err != nil {
		return err
	}
	if err := logger.Init(); err != nil {
		return err
	}

	// The TUI owns the terminal, so errors only go to stderr in headless mode
	logger.SetStderr(viper.GetBool("headless"))

	if used := config.GetConfigFileUsed(); used != "" {
		logger.Debug("Using config file: %s", used)
	}
	return nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is .realty/settings.yaml)")
	flags.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	flags.String("base-url", "", fmt.Sprintf("backend API base URL (default %s)", config.DefaultBaseURL))

	rootCmd.Flags().StringP("prompt", "p", "", "send a prompt directly without entering the TUI")
	rootCmd.Flags().BoolP("headless", "H", false, "run without the TUI (requires --prompt or --image)")
	rootCmd.Flags().String("image", "", "path of an image to attach in headless mode")
	rootCmd.Flags().Bool("render", false, "print the finished reply as rendered markdown")

	bindFlags()
}

// bindFlags ties flags to their viper keys
func bindFlags() {
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("base-url"))

	viper.BindPFlag("prompt", rootCmd.Flags().Lookup("prompt"))
	viper.BindPFlag("headless", rootCmd.Flags().Lookup("headless"))
	viper.BindPFlag("image", rootCmd.Flags().Lookup("image"))
	viper.BindPFlag("render", rootCmd.Flags().Lookup("render"))
}
