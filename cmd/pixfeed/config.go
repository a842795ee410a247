package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/glabrego/pixfeed-cli/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringSliceP("key", "k", []string{}, "Only show these keys")
	_ = configCmd.RegisterFlagCompletionFunc("key", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
	})
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "List configuration keys, defaults and environment overrides",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fields := config.Fields
		if keys := lo.Must(cmd.Flags().GetStringSlice("key")); len(keys) > 0 {
			fields = make([]config.Field, 0, len(keys))
			for _, key := range keys {
				f, ok := config.Default[key]
				if !ok {
					return fmt.Errorf("unknown key %s", key)
				}
				fields = append(fields, f)
			}
			sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
		}

		out := cmd.OutOrStdout()
		for _, f := range fields {
			fmt.Fprintf(out, "%s (%s)\n", f.Key, f.TypeName())
			fmt.Fprintf(out, "  %s\n", strings.TrimSpace(f.Description))
			fmt.Fprintf(out, "  default: %v\n", f.Value)
			fmt.Fprintf(out, "  env:     %s\n\n", f.Env())
		}
		return nil
	},
}
