package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbjohnson/clock"
	sdkversion "github.com/cosmos/cosmos-sdk/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pushchain/push-wallet-connect/walletClient/api"
	"github.com/pushchain/push-wallet-connect/walletClient/config"
	"github.com/pushchain/push-wallet-connect/walletClient/events"
	"github.com/pushchain/push-wallet-connect/walletClient/journal"
	"github.com/pushchain/push-wallet-connect/walletClient/logger"
	"github.com/pushchain/push-wallet-connect/walletClient/methods"
	"github.com/pushchain/push-wallet-connect/walletClient/reconciler"
	"github.com/pushchain/push-wallet-connect/walletClient/service"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/transport/loopback"
)

const (
	flagWallet       = "wallet"
	flagWalletSecret = "wallet-secret"
	flagAutoConnect  = "auto-connect"

	walletLoopback = "loopback"
)

func InitRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().Int(flagPort, 0, "Query server port")
	cmd.Flags().String(flagBridge, "", "WalletConnect bridge URL")
	cmd.Flags().String(flagStorageBackend, "", "Storage backend: file, sqlite or memory")
	cmd.Flags().String(flagStorageDir, "", "Storage directory (default <home>/storage)")
	cmd.Flags().Int(flagLogLevel, 1, "Log level, 0 = debug through 5 = panic")
	cmd.Flags().String(flagLogFormat, "", "Log format: json or console")
	cmd.Flags().Bool(flagJournal, true, "Record wallet requests in the request journal")
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the session service and its query server",
		Long: `
Start a session service on the configured storage and serve it over HTTP.

The loopback wallet signs every request with a key derived from
--wallet-secret (or PWALLET_WALLET_SECRET) and is meant for development.

Examples:
  pwalletd start --wallet-secret devnet --auto-connect
  PWALLET_STORAGE_BACKEND=memory pwalletd start --wallet-secret devnet
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(viper.GetString(flagHome))
			if err != nil {
				return err
			}
			log := logger.Init(cfg)

			n, err := openNode(cfg, log)
			if err != nil {
				return err
			}
			defer n.close()

			js, err := n.openJournal()
			if err != nil {
				return err
			}

			factory, err := walletFactory(cfg)
			if err != nil {
				return err
			}

			svc, err := service.New(service.Options{
				Config:  cfg,
				Mirror:  n.mirror,
				Factory: factory,
				Journal: js,
				Logger:  log,
			})
			if err != nil {
				return fmt.Errorf("failed to create session service: %w", err)
			}
			defer svc.Close()

			for _, name := range events.All {
				svc.AddListener(name, func(p events.Payload) {
					ev := log.Info().Str("event", string(p.Name)).Str("status", string(p.State.Status))
					if p.Result != nil && p.Result.Failed() {
						ev = ev.Str("error", p.Result.Error)
					}
					ev.Msg("session event")
				})
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if js != nil {
				cleaner := journal.NewCleaner(js, clock.New(), cfg.JournalCleanupInterval(), cfg.JournalRetentionPeriod(), log)
				if err := cleaner.Start(ctx); err != nil {
					return fmt.Errorf("failed to start journal cleaner: %w", err)
				}
				defer cleaner.Stop()
			}

			server := api.NewServer(log, cfg.QueryServerPort, svc, js, svc.Metrics().Handler())
			if err := server.Start(); err != nil {
				return fmt.Errorf("failed to start query server: %w", err)
			}
			defer server.Stop()

			if viper.GetBool(flagAutoConnect) {
				if res := svc.Connect(ctx, methods.ConnectParams{}); res.Failed() {
					log.Error().Str("error", res.Error).Msg("auto connect failed")
				}
			}

			<-ctx.Done()
			log.Info().Msg("shutting down")
			return nil
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().String(flagWallet, walletLoopback, "Wallet transport")
	cmd.Flags().String(flagWalletSecret, "", "Secret the loopback wallet key is derived from")
	cmd.Flags().Bool(flagAutoConnect, false, "Connect as soon as the service starts")
	return cmd
}

func walletFactory(cfg config.Config) (transport.Factory, error) {
	switch kind := viper.GetString(flagWallet); kind {
	case walletLoopback:
		secret := viper.GetString(flagWalletSecret)
		if secret == "" {
			return nil, fmt.Errorf("the loopback wallet needs --%s", flagWalletSecret)
		}
		w, err := loopback.FromSecret(secret, cfg.Bech32Prefix, clock.New())
		if err != nil {
			return nil, fmt.Errorf("failed to create loopback wallet: %w", err)
		}
		return w.Factory(), nil
	default:
		return nil, fmt.Errorf("unsupported wallet transport %q", kind)
	}
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config to <home>/config",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := viper.GetString(flagHome)
			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			cfg.NodeHome = home
			applyOverrides(cfg)
			if err := config.Save(cfg, home); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Config written to %s/config\n", home)
			return nil
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the persisted session namespaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(viper.GetString(flagHome))
			if err != nil {
				return err
			}
			n, err := openNode(cfg, logger.Init(cfg))
			if err != nil {
				return err
			}
			defer n.close()

			ts, ok := n.mirror.ReadTransport()
			out := struct {
				Connected bool                       `json:"connected"`
				Transport *storage.TransportSession `json:"transport"`
				Service   storage.ServiceState       `json:"service"`
			}{
				Connected: ok && ts.Connected,
				Service:   n.mirror.ReadService(),
			}
			if ok {
				out.Transport = &ts
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove both persisted session namespaces",
		Long: `
Remove the transport and service namespaces from storage. Every running
service sharing the storage sees its session disconnect.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(viper.GetString(flagHome))
			if err != nil {
				return err
			}
			n, err := openNode(cfg, logger.Init(cfg))
			if err != nil {
				return err
			}
			defer n.close()

			if err := n.mirror.ClearTransport(); err != nil {
				return err
			}
			if err := n.mirror.ClearService(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session storage cleared")
			return nil
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print session storage changes made by other processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(viper.GetString(flagHome))
			if err != nil {
				return err
			}
			log := logger.Init(cfg)
			n, err := openNode(cfg, log)
			if err != nil {
				return err
			}
			defer n.close()

			watcher := n.mirror.Watcher()
			if watcher == nil {
				return fmt.Errorf("the %s storage backend cannot be watched", cfg.StorageBackend)
			}

			out := cmd.OutOrStdout()
			r := reconciler.New(watcher, log, func(c reconciler.Change) {
				fmt.Fprintf(out, "%s: %s\n", c.Key, strings.Join(c.Fields, ", "))
			})
			r.Start()
			defer r.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print pwalletd version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Name:       %s\n", sdkversion.Name)
			fmt.Printf("App Name:   %s\n", sdkversion.AppName)
			fmt.Printf("Version:    %s\n", sdkversion.Version)
			fmt.Printf("Commit:     %s\n", sdkversion.Commit)
			fmt.Printf("Build Tags: %s\n", sdkversion.BuildTags)
		},
	}
}
