package play

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bardlabs/minstrel/config"
	"github.com/bardlabs/minstrel/tools"
	"github.com/bardlabs/minstrel/tui"
)

// debugLogFile receives diagnostics while the TUI owns the terminal.
const debugLogFile = "minstrel-debug.log"

var (
	configFile = tools.GetenvDefault(config.EnvPrefix+"CONFIG", "minstrel.yaml")

	Cmd = &cobra.Command{
		Use:   "play",
		Short: "Connect to the authority and play",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}
)

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", configFile, "path of config file")
}

func runPlay(cmd *cobra.Command, args []string) error {
	logger := log.With().Str("com", "play-cmd").Logger()

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	// A missing config file is only an error when one was named
	// explicitly; environment variables and defaults cover first runs.
	path := configFile
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if cmd.Flags().Changed("config") {
			return fmt.Errorf("config file not found: %s", path)
		}
		logger.Info().Str("config", path).Msg("no config file, using environment and defaults")
		path = ""
	} else {
		logger.Info().Str("config", path).Msg("loading configuration")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	// The TUI owns the terminal from here on. Diagnostics go to a file
	// in debug mode and are dropped otherwise.
	gameLogger := zerolog.Nop()
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		gameLogger = zerolog.New(f).With().Timestamp().Logger()
		logger.Info().Str("file", debugLogFile).Msg("debug log enabled")
	}

	return tui.Run(cfg, gameLogger)
}
