package main

import (
	"github.com/spf13/cobra"

	"github.com/dzonerzy/go-cstress/settings"
)

var profile string

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] -- <command> [params] [-option fragments...]",
	Short: "Parse a stress command line and print the resolved settings",
	Long: "Parse a stress command line, layering options from an optional JSON profile " +
		"and CSTRESS_<OPTION> environment variables below the command line, " +
		"and print the resolved settings.",
	Example: "  cstress-settings resolve -- write n=1m -rate threads=100 throttle=15/s -node 10.0.0.1",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []settings.ParseOption{settings.WithLogger(logger)}
		if profile != "" {
			opts = append(opts, settings.WithProfile(profile))
		}
		s, err := settings.Parse(args, opts...)
		if err != nil {
			return err
		}
		s.WriteSettings(cmd.OutOrStdout())
		return nil
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage [command|option]",
	Short: "Print the grammar of a command or option",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			settings.WriteHelp(cmd.OutOrStdout())
			return nil
		}
		return settings.WriteTopicHelp(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	resolveCmd.Flags().StringVar(&profile, "profile", "", "JSON profile with default option fragments")
}
