package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the lv2ui-host command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lv2ui-host",
		Short: "Host LV2 external UIs",
		Long: `lv2ui-host loads the external UI of an LV2 plugin, drives its event loop
on a dedicated thread and applies the control changes it writes to the
plugin's ports.

Plugins and their UIs are read from a YAML manifest:

  plugins:
    - uri: urn:example:synth
      ports:
        - {index: 5, symbol: cutoff, min: 20, max: 20000, default: 1000}
      uis:
        - uri: urn:example:synth#ui
          types: [http://kxstudio.sf.net/ns/lv2ext/external-ui#Widget]
          binary: file:///usr/lib/lv2/synth.lv2/synth_ui.so
          bundle: file:///usr/lib/lv2/synth.lv2/`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	bindFlags(rootCmd)
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newRunCommand())

	return rootCmd
}
