package main

import (
	"os"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/controller"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/ui"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/ui/terminal"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/uploader"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/utils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

type globalFlags struct {
	envFile   string
	server    string
	logLevel  string
	logFormat string
	noColor   bool
}

// app is the wiring every subcommand shares: one page, one controller, one
// HTTP client.
type app struct {
	cfg    config.Config
	client *uploader.Client
	page   *ui.Page
	ctrl   *controller.Controller
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "polyup",
		Short:         "Upload audio for transcription and translation",
		Long:          `Send an audio file to a transcription server and print the returned audio link and formatted translation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "settings file to load (default ./.env when present)")
	root.PersistentFlags().StringVar(&flags.server, "server", "", "server base URL (overrides POLYGLOT_UPLOAD_SERVER_URL)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: text|json")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newUploadCmd(flags))
	root.AddCommand(newBrowseCmd(flags))
	root.AddCommand(newWatchCmd(flags))
	return root
}

func loadConfig(cmd *cobra.Command, flags *globalFlags) (config.Config, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("server") {
		cfg.ServerURL = flags.server
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = flags.logFormat
	}
	if changed("no-color") {
		cfg.NoColor = flags.noColor
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command, flags *globalFlags, opts ...controller.Option) (*app, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}

	factory, err := logging.NewLogrusFactory(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	logging.SetLoggerFactory(factory)

	client, err := uploader.NewClient(
		model.WithURL(cfg.ServerURL),
		model.WithUploadPath(cfg.UploadPath),
		model.WithFieldName(cfg.FieldName),
		model.WithTimeout(cfg.Timeout),
		model.WithUserAgent("polyup/"+version),
	)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	page := ui.NewPage(controller.IdlePrompt)
	renderer := terminal.NewRenderer(out, page,
		terminal.WithColors(colorsEnabled(out, cfg.NoColor)),
		terminal.WithAudioResolver(client.ResolveAudioURL),
	)

	opts = append([]controller.Option{controller.WithRenderHook(renderer.Render)}, opts...)
	ctrl, err := controller.New(page.Elements(), client, opts...)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, client: client, page: page, ctrl: ctrl}, nil
}

// colorsEnabled follows the NO_COLOR convention and only colors terminals.
func colorsEnabled(w any, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
