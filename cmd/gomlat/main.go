package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gomlat/internal/app"
)

func newRootCmd(config *app.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gomlat",
		Short: "Mode S / Beast decoder and multilateration feeder",
		Long: `Connects to a Mode S Beast receiver, deframes the byte-stuffed
binary stream, decodes each Mode S message (downlink format, ICAO address,
altitude, CPR flags, CRC) and records the decoded messages.

Every flag can also be set through its MLAT_* environment variable, or
through a YAML config file given with --config (explicit flags win).

Example usage:
  gomlat --receiver localhost:30005 --lat 51.47 --lon -0.45 --alt 25m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ShowVersion {
				app.ShowVersion()
				return nil
			}

			if config.ConfigFile != "" {
				if err := mergeConfigFile(cmd, config); err != nil {
					return err
				}
			}

			application := app.NewApplication(*config)
			return application.Start()
		},
	}

	rootCmd.Flags().StringVarP(&config.Receiver, "receiver", "r", app.EnvOr("MLAT_RECEIVER", app.DefaultReceiver), "host:port supplying the Beast stream")
	rootCmd.Flags().StringVar(&config.Server, "server", app.EnvOr("MLAT_SERVER", ""), "host:port of the multilateration server")
	rootCmd.Flags().StringVar(&config.User, "user", app.EnvOr("MLAT_USER", ""), "User information to give to the server")
	rootCmd.Flags().BoolVar(&config.NoUDP, "no-udp", app.EnvBool("MLAT_NO_UDP", false), "Don't offer UDP transport for sync/mlat messages")
	rootCmd.Flags().Float64Var(&config.Lat, "lat", app.EnvFloat("MLAT_LAT", 0), "Latitude of the receiver, in decimal degrees")
	rootCmd.Flags().Float64Var(&config.Lon, "lon", app.EnvFloat("MLAT_LON", 0), "Longitude of the receiver, in decimal degrees")
	rootCmd.Flags().StringVar(&config.Alt, "alt", app.EnvOr("MLAT_ALT", ""), "Altitude of the receiver; metres unless suffixed with 'ft' or 'm'")
	rootCmd.Flags().BoolVar(&config.Privacy, "privacy", app.EnvBool("MLAT_PRIVACY", false), "Withhold the receiver location from coverage maps")
	rootCmd.Flags().StringVarP(&config.LogDir, "log-dir", "l", app.EnvOr("MLAT_LOG_DIR", app.DefaultLogDir), "Message log directory")
	rootCmd.Flags().BoolVarP(&config.LogRotateUTC, "utc", "u", true, "Use UTC for message log rotation")
	rootCmd.Flags().StringVarP(&config.LogLevel, "log-level", "v", app.EnvOr("MLAT_LOG_LEVEL", app.DefaultLogLevel), "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&config.ConfigFile, "config", "c", "", "YAML config file")
	rootCmd.Flags().BoolVar(&config.ShowVersion, "version", false, "Show version information")

	return rootCmd
}

// mergeConfigFile fills in config values from the YAML file for every flag
// the user did not set explicitly.
func mergeConfigFile(cmd *cobra.Command, config *app.Config) error {
	fileCfg, err := app.LoadFile(config.ConfigFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("receiver") && fileCfg.Receiver != "" {
		config.Receiver = fileCfg.Receiver
	}
	if !flags.Changed("server") && fileCfg.Server != "" {
		config.Server = fileCfg.Server
	}
	if !flags.Changed("user") && fileCfg.User != "" {
		config.User = fileCfg.User
	}
	if !flags.Changed("no-udp") {
		config.NoUDP = config.NoUDP || fileCfg.NoUDP
	}
	if !flags.Changed("lat") && fileCfg.Lat != 0 {
		config.Lat = fileCfg.Lat
	}
	if !flags.Changed("lon") && fileCfg.Lon != 0 {
		config.Lon = fileCfg.Lon
	}
	if !flags.Changed("alt") && fileCfg.Alt != "" {
		config.Alt = fileCfg.Alt
	}
	if !flags.Changed("privacy") {
		config.Privacy = config.Privacy || fileCfg.Privacy
	}
	if !flags.Changed("log-dir") && fileCfg.LogDir != "" {
		config.LogDir = fileCfg.LogDir
	}
	if !flags.Changed("log-level") && fileCfg.LogLevel != "" {
		config.LogLevel = fileCfg.LogLevel
	}
	return nil
}

func main() {
	var config app.Config

	rootCmd := newRootCmd(&config)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
