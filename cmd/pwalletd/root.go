package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pushchain/push-wallet-connect/walletClient/constant"
)

const flagHome = "home"

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pwalletd",
		Short: "Push Wallet Connect session daemon",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String(flagHome, constant.DefaultNodeHome, "Home directory holding config and storage")

	InitRootCmd(rootCmd) // add subcommands like `start` and `version`

	return rootCmd
}

// bindFlags lets PWALLET_<FLAG> environment variables stand in for any flag
// of cmd that was not set on the command line.
func bindFlags(cmd *cobra.Command) error {
	viper.SetEnvPrefix(constant.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.InheritedFlags())
}
