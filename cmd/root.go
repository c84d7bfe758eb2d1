package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/automator/internal/app"
	"github.com/zjrosen/automator/internal/automator"
	"github.com/zjrosen/automator/internal/config"
	"github.com/zjrosen/automator/internal/extract"
	"github.com/zjrosen/automator/internal/flags"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/store"
	"github.com/zjrosen/automator/internal/tracing"
	"github.com/zjrosen/automator/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	localConfigPath = ".automator/config.yaml"
	debugEnv        = "AUTOMATOR_DEBUG"
	logPathEnv      = "AUTOMATOR_LOG"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       = config.Defaults()
)

var rootCmd = &cobra.Command{
	Use:   "automator",
	Short: "Turn plain-language requests into automation workflows",
	Long: `A terminal user interface that turns a plain-language request such as
"When I get an email from my boss, send a Slack message" into a structured
trigger/action automation you can review, edit and delete.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/automator/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs and enable the log overlay (ctrl+x)")
}

// setDefaults registers every default with viper so Unmarshal fills keys
// the config file leaves out.
func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("extractor.provider", d.Extractor.Provider)
	v.SetDefault("extractor.model", d.Extractor.Model)
	v.SetDefault("extractor.api_key_env", d.Extractor.APIKeyEnv)
	v.SetDefault("extractor.timeout", d.Extractor.Timeout)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("ui.show_examples", d.UI.ShowExamples)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

func initConfig() {
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .automator/config.yaml (current directory)
		// 2. ~/.config/automator/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "automator"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config anywhere: seed the user config with the template.
			if path := userConfigPath(); path != "" {
				if writeErr := config.WriteDefaultConfig(path); writeErr == nil {
					viper.SetConfigFile(path)
					_ = viper.ReadInConfig()
				}
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "automator", "config.yaml")
}

// configPath is the file `config set` writes to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if p := userConfigPath(); p != "" {
		return p
	}
	return localConfigPath
}

func debugEnabled() bool {
	return debugFlag || os.Getenv(debugEnv) != ""
}

// initLogging opens the debug log when debug mode is on. The returned
// cleanup is always safe to call.
func initLogging() (func(), error) {
	if !debugEnabled() {
		return func() {}, nil
	}
	logPath := os.Getenv(logPathEnv)
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "automator starting", "version", version, "logPath", logPath)
	return cleanup, nil
}

// runtime is the wired object graph shared by every command.
type runtime struct {
	service  *automator.Service
	tracer   *tracing.Provider
	items    *store.Collection
	shutdown func()
}

// buildRuntime validates the loaded config and wires tracing, the
// extractor, the collection and the service.
func buildRuntime(c config.Config) (*runtime, error) {
	if err := config.Validate(c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tp, err := tracing.NewProvider(c.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	ec := c.Extractor.ExtractConfig()
	ext, err := extract.New(ec)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, err
	}
	if tp.Enabled() {
		ext = extract.WithTracing(ext, tp.Tracer(), ec)
	}

	items := store.New()
	rt := &runtime{
		service: automator.New(items, ext),
		tracer:  tp,
		items:   items,
	}
	rt.shutdown = func() {
		items.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "tracer shutdown failed", err)
		}
	}
	return rt, nil
}

func watchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		// Running components keep their settings; changes apply on restart.
		log.Info(log.CatConfig, "config file changed, restart to apply", "path", e.Name, "op", e.Op.String())
	})
	viper.WatchConfig()
}

func runApp(_ *cobra.Command, _ []string) error {
	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	defer cleanup()

	rt, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.shutdown()

	if viper.ConfigFileUsed() != "" {
		watchConfig()
	}
	styles.ApplyMarkdownStyle(cfg.UI.MarkdownStyle)

	model := app.New(app.Config{
		Service:      rt.service,
		Flags:        flags.FromConfig(cfg.Flags),
		ShowExamples: cfg.UI.ShowExamples,
		Debug:        debugEnabled(),
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	_ = model.Close()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errCreateFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
