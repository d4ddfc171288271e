package cmd

import (
	"context"
	"errors"
	"fmt"
	"iserv-client/cmd/iserv/globals"
	"iserv-client/cmd/iserv/utils"
	"iserv-client/internal/components/credential"
	"iserv-client/internal/components/telemetry"
	"iserv-client/pkg/configutil"
	"iserv-client/pkg/iserv"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	hostFlag   *string
	userFlag   *string
	verbose    *bool
	logFile    *string
	dumpHttp   *string
)

var (
	providers telemetry.Telemetry
	logOut    *os.File
	cleanup   []func()
)

func init() {
	flags := rootCmd.PersistentFlags()
	configPath = flags.String("config", "iserv.json5", "Path to the config file, <name>.local.json5 overrides it.")
	hostFlag = flags.String("host", "", "Domain of the IServ instance, overrides the config.")
	userFlag = flags.StringP("username", "u", "", "Account name, overrides the config.")
	verbose = flags.BoolP("verbose", "v", false, "Log debug output.")
	logFile = flags.String("log-file", "", "Write logs to this file instead of stderr.")
	dumpHttp = flags.String("dump-http", "", "Write every portal request and response into this directory.")
}

var rootCmd = &cobra.Command{
	Use:   "iserv",
	Short: "iserv is a CLI for the IServ school portal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if *logFile != "" {
			f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				return err
			}
			logOut = f
			telemetry.InitSlog(*verbose, f)
		} else {
			telemetry.InitSlog(*verbose, nil)
		}

		cfg, err := configutil.ReadConfig[globals.Config](*configPath)
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no config file found", "path", *configPath)
		} else if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if *hostFlag != "" {
			cfg.Host = *hostFlag
		}
		if *userFlag != "" {
			cfg.Username = *userFlag
		}

		providers, err = telemetry.Setup(cmd.Context(), "iserv-cli", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config: cfg,
			Tel:    telemetry.SlogAPI{},
		}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown()
	},
}

func shutdown() {
	for _, fn := range cleanup {
		fn()
	}
	cleanup = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := providers.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	if logOut != nil {
		logOut.Close()
		logOut = nil
	}
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openCredentials(cfg globals.Config) credential.Store {
	store, err := credential.Open(cfg.KeyringDir)
	if err != nil {
		utils.Fatal("failed to open keyring", err)
	}
	return store
}

// password returns the configured password or the one saved with `login --save`.
func password(cfg globals.Config) string {
	if cfg.Password != "" {
		return cfg.Password
	}
	store := openCredentials(cfg)
	pass, err := store.Get(credential.Key(cfg.Username, cfg.Host))
	if errors.Is(err, credential.NotFound) {
		utils.Fatal(
			"no password configured",
			fmt.Errorf("set it in %s or run 'iserv login --save': %w", *configPath, err),
		)
	}
	if err != nil {
		utils.Fatal("failed to read password", err)
	}
	return pass
}

func clientOptions(cfg globals.Config, pass string) iserv.ClientOptions {
	return iserv.ClientOptions{
		Host:              cfg.Host,
		Username:          cfg.Username,
		Password:          pass,
		Timeout:           time.Duration(cfg.Timeout) * time.Second,
		CloudflareBypass:  cfg.CloudflareBypass,
		RequestsPerSecond: cfg.RequestsPerSecond,
		DumpDir:           *dumpHttp,
	}
}

// newClient logs in with the configured account, it exits the process on failure.
func newClient(cmd *cobra.Command) *iserv.Client {
	value := globals.Get(cmd.Context())
	cfg := value.Config
	if cfg.Host == "" || cfg.Username == "" {
		utils.Fatal("missing account", fmt.Errorf("host and username must be set in %s or with --host/--username", *configPath))
	}

	client, err := iserv.NewClient(cmd.Context(), clientOptions(cfg, password(cfg)), value.Tel)
	if err != nil {
		utils.Fatal("failed to login", err)
	}
	cleanup = append(cleanup, client.Close)
	return client
}
