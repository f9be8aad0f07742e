package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jsphweid/accompanist/config"
	"github.com/jsphweid/accompanist/logger"
	"github.com/jsphweid/accompanist/pipeline"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=..."
var Version = "dev"

var (
	configPath string
	cfg        *config.Config
	flush      = func() {}

	// replaced in tests
	newDriver = pipeline.New
)

var opts = pipeline.DefaultOptions()

var rootCmd = &cobra.Command{
	Use:   "accompanist <input>",
	Short: "Adds a piano accompaniment to sheet music",
	Long: `Reads a sheet-music PDF or image, recognizes the notation and writes the
score together with a one-chord-per-measure piano accompaniment as MIDI
and MusicXML.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return err
		}
		flush, err = logger.Init(cfg.SentryDSN, cfg.Environment, Version)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, err := newDriver(cfg)
		if err != nil {
			return err
		}
		o := opts
		o.Input = args[0]
		if !cmd.Flags().Changed("work-dir") {
			o.WorkDir = cfg.WorkDir
		}
		res, err := driver.Run(cmd.Context(), o)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved MIDI to %s and MusicXML to %s\n", res.MidiPath, res.XMLPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file overriding environment settings")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.MidiPath, "midi", opts.MidiPath, "MIDI output path")
	flags.StringVar(&opts.XMLPath, "xml", opts.XMLPath, "MusicXML output path")
	flags.StringVar(&opts.PagesDir, "pages-dir", opts.PagesDir, "directory for rendered page images")
	flags.StringVar(&opts.ScorePath, "score", opts.ScorePath, "path of the recognized MusicXML")
	flags.BoolVar(&opts.Isolate, "isolate", false, "keep intermediates in a per-run directory that is removed afterwards")
	flags.StringVar(&opts.WorkDir, "work-dir", opts.WorkDir, "parent of per-run directories (default WORK_DIR)")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	flush()
	cobra.CheckErr(err)
}
