package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/exposure"
	"github.com/gogpu/exposure/internal/tiling"
)

const envPrefix = "AUTOEXPOSE"

// app carries the configuration shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "autoexpose",
		Short: "Compute histograms and correct the exposure of images",
		Long: `autoexpose measures the red, green, blue and brightness histograms of an
image and corrects its exposure with a tone curve derived from the
brightness distribution. Work runs on the GPU when one is available and
on a CPU worker pool otherwise.

Supported inputs are PNG, JPEG, BMP, TIFF and WebP. Corrected images are
written as PNG unless the output name ends in .tif, .tiff, .bmp or .jpg.

Examples:
  # Print histogram statistics
  autoexpose histogram photo.jpg

  # Correct exposure at double strength
  autoexpose correct --strength 2 -o fixed.png photo.jpg

  # Force the CPU device and smaller blocks
  AUTOEXPOSE_DEVICE=software autoexpose correct --max-texture 1024 photo.png`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.String("log-level", "off", "log level (debug|info|warn|error|off)")
	pf.String("device", "", "compute device (wgpu|software), default best available")
	pf.Int("max-texture", tiling.DefaultMaxTextureSize, "largest block edge in pixels")
	pf.Int("overlap", tiling.DefaultOverlap, "pixels shared by neighboring blocks")
	pf.Int("concurrency", 0, "blocks processed at once (0 = GOMAXPROCS)")
	pf.String("lang", "en", "language tag for number formatting")
	for _, name := range []string{"log-level", "device", "max-texture", "overlap", "concurrency", "lang"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		a.histogramCmd(),
		a.correctCmd(),
		a.devicesCmd(),
		a.shadersCmd(),
	)
	return root
}

// initConfig reads the config file and environment, then installs the
// logger.
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	level := strings.ToLower(a.v.GetString("log-level"))
	if level == "off" || level == "" {
		exposure.SetLogger(nil)
		return nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	exposure.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: l})))
	return nil
}

// newEngine opens an engine configured from flags, file and environment.
func (a *app) newEngine() (*exposure.Engine, error) {
	opts := []exposure.Option{
		exposure.WithMaxTextureSize(a.v.GetInt("max-texture")),
		exposure.WithOverlap(a.v.GetInt("overlap")),
		exposure.WithConcurrency(a.v.GetInt("concurrency")),
	}
	if name := a.v.GetString("device"); name != "" {
		opts = append(opts, exposure.WithDeviceName(name))
	}
	return exposure.New(opts...)
}

func (a *app) printer() *message.Printer {
	tag, err := language.Parse(a.v.GetString("lang"))
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}
