package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagBlocks int
	flagBase   uint32
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "storagectl",
	Short: "Inspect the Aurelia storage core",
	Long: `storagectl assembles a NAND chip, an FTL, and a storage controller
in memory and drives them through one operation, printing the result.

Device geometry is resolved from flags, then environment variables
prefixed AURELIA_, then an optional config file, in that order.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagBlocks, "blocks", 64, "number of erase blocks on the chip")
	rootCmd.PersistentFlags().Uint32Var(&flagBase, "base", 0xF0000, "controller MMIO base address")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a config file (default $HOME/.storagectl.yaml)")

	cobra.OnInitialize(initConfig)

	viper.BindPFlag("blocks", rootCmd.PersistentFlags().Lookup("blocks"))
	viper.BindPFlag("base", rootCmd.PersistentFlags().Lookup("base"))

	rootCmd.AddCommand(formatCmd, writeCmd, readCmd, blockInfoCmd, gcStatsCmd, demoCmd)
}

func initConfig() {
	viper.SetEnvPrefix("aurelia")
	viper.AutomaticEnv()

	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".storagectl")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}

	if viper.IsSet("blocks") {
		flagBlocks = viper.GetInt("blocks")
	}
	if viper.IsSet("base") {
		flagBase = uint32(viper.GetUint("base"))
	}
}
