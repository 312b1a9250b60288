package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/jirarest/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change jirarest settings",
	}
	cmd.AddCommand(a.configListCmd(), a.configGetCmd(), a.configSetCmd(), a.configUnsetCmd())
	return cmd
}

func (a *app) saveConfig() config.SaveConfig {
	return config.SaveConfig{
		GlobalConfigDir:  a.resolverConfig.GlobalConfigDir,
		GlobalConfigFile: a.resolverConfig.GlobalConfigFile,
		LocalConfigName:  a.resolverConfig.LocalConfigName,
	}
}

func (a *app) configListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every setting with its source; secrets are masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := newTable(a.out, "KEY", "VALUE", "SOURCE")
			for _, key := range a.resolved.Keys() {
				row(tw, key, a.resolved.Display(key), string(a.resolved.Source(key)))
			}
			return tw.Flush()
		},
	}
}

func (a *app) configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(config.Keys, args[0]) {
				return fmt.Errorf("%w: %s", config.ErrUnknownKey, args[0])
			}
			fmt.Fprintln(a.out, a.resolved.Display(args[0]))
			a.logger.Debug("config value", "key", args[0], "source", a.resolved.Source(args[0]))
			return nil
		},
	}
}

func (a *app) configSetCmd() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a setting to the global config, or the local one with --local",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.saveConfig()
			if local {
				dir, err := os.Getwd()
				if err != nil {
					return err
				}
				if err := sc.SaveLocal(dir, args[0], args[1]); err != nil {
					return err
				}
				success(a.out, "Set %s in %s", args[0], sc.LocalConfigName)
				return nil
			}
			if err := sc.SaveGlobal(args[0], args[1]); err != nil {
				return err
			}
			path, _ := sc.GlobalPath()
			success(a.out, "Set %s in %s", args[0], path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Write to "+config.DefaultResolverConfig().LocalConfigName+" in the current directory")
	return cmd
}

func (a *app) configUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting from the global config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.saveConfig().DeleteGlobalKey(args[0]); err != nil {
				return err
			}
			success(a.out, "Unset %s", args[0])
			return nil
		},
	}
}
