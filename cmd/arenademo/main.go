// Command arenademo fills a fixed arena in two halves and prints a hex dump
// after each step.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type config struct {
	Capacity  int    `mapstructure:"capacity"`
	Alignment int    `mapstructure:"alignment"`
	Backend   string `mapstructure:"backend"`
	TypeAlign bool   `mapstructure:"type-align"`
	Color     string `mapstructure:"color"`
	Stats     string `mapstructure:"stats"`
	Verbose   bool   `mapstructure:"verbose"`
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ARENADEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "arenademo",
		Short:         "Fill a fixed-capacity arena and dump its bytes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg config
			if err := v.Unmarshal(&cfg); err != nil {
				return errors.Wrap(err, "failed to unmarshal config")
			}
			return run(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.Int("capacity", 512, "Arena capacity in bytes")
	f.Int("alignment", 8, "Buffer alignment in bytes (power of two)")
	f.String("backend", "heap", "Buffer backend: heap or mmap")
	f.Bool("type-align", false, "Pad each allocation to its type's alignment")
	f.String("color", "auto", "Colour dumps: auto, always or never")
	f.String("stats", "none", "Print arena statistics at the end: yaml or none")
	f.BoolP("verbose", "v", false, "Log arena events to stderr")
	if err := v.BindPFlags(f); err != nil {
		panic(err)
	}

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
