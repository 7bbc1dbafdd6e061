package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	addr           string
	logFile        string
	logLevel       string
	maxConnections int
	natsURL        string
	publicURL      string
	roomsFile      string
	schedulerTick  time.Duration
}

func (c *Config) validate() error {
	if c.addr == "" {
		return errors.New("--addr must not be empty")
	}
	if c.maxConnections < 0 {
		return fmt.Errorf("invalid max connections (must not be negative): %d", c.maxConnections)
	}
	if c.schedulerTick < 0 {
		return fmt.Errorf("invalid scheduler tick (must not be negative): %s", c.schedulerTick)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GAMEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "gamehub",
		Short:         "A multiplayer game room hub for card and board games.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			bindFlags(v, cmd.Flags())
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVarP(&cfg.roomsFile, "rooms", "r", "", "path to the room catalogue YAML; built-in rooms when empty (env: GAMEHUB_ROOMS)")
	pfs.StringVar(&cfg.logLevel, "log-level", "info", "debug, info, warn or error (env: GAMEHUB_LOG_LEVEL)")
	pfs.StringVar(&cfg.logFile, "log-file", "", "also write JSON logs to this rotated file (env: GAMEHUB_LOG_FILE)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rooms over websockets, HTTP and optionally NATS.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serveHub(cmd.Context(), cfg)
		},
	}
	fs := serve.Flags()
	fs.StringVarP(&cfg.addr, "addr", "a", "0.0.0.0:8080", "address to listen on (env: GAMEHUB_ADDR)")
	fs.IntVar(&cfg.maxConnections, "max-connections", 10000, "maximum concurrent websocket connections (env: GAMEHUB_MAX_CONNECTIONS)")
	fs.StringVar(&cfg.natsURL, "nats-url", "", "bridge requests and messages over this NATS server (env: GAMEHUB_NATS_URL)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "base URL encoded in room QR codes (env: GAMEHUB_PUBLIC_URL)")
	fs.DurationVar(&cfg.schedulerTick, "scheduler-tick", 0, "turn timer resolution; 0 uses the default (env: GAMEHUB_SCHEDULER_TICK)")

	rooms := &cobra.Command{
		Use:   "rooms",
		Short: "Print the effective room catalogue as YAML.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRooms(cmd.OutOrStdout(), cfg)
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gamehub v%s\n", releaseVersion)
		},
	}

	cmd.AddCommand(serve, rooms, version)

	for _, c := range []*cobra.Command{cmd, serve, rooms, version} {
		c.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
			return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
		})
	}

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("gamehub v{{.Version}}\n")

	return cmd
}

// bindFlags lets GAMEHUB_* variables fill any flag not given on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
