package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/lv2extui/pkg/extui"
	"github.com/justyntemme/lv2extui/pkg/metadata"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the UIs a plugin declares",
		Long: `List classifies every UI the plugin declares. External UIs are printed
with their binary and bundle paths; other kinds are marked unsupported.
UIs whose paths cannot be read are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	plugin, err := findPlugin(opts)
	if err != nil {
		return err
	}

	uis, discoveryErr := extui.PluginUIsBestEffort(plugin.Entries())
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d UI(s)\n", plugin.URI, len(uis))
	for _, ui := range uis {
		switch ui := ui.(type) {
		case *extui.ExternalUI:
			fmt.Fprintf(out, "  external     %s\n", ui.URI)
			fmt.Fprintf(out, "    binary     %s\n", ui.Binary.Path)
			fmt.Fprintf(out, "    bundle     %s\n", ui.Bundle.Path)
		default:
			fmt.Fprintf(out, "  unsupported  %s\n", ui.UIURI())
		}
	}
	if discoveryErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped:\n%v\n", discoveryErr)
	}
	return nil
}

func findPlugin(opts options) (*metadata.Plugin, error) {
	store, err := metadata.Load(opts.Manifest)
	if err != nil {
		return nil, err
	}
	plugin, ok := store.Plugin(opts.Plugin)
	if !ok {
		return nil, fmt.Errorf("plugin %s not found in %s", opts.Plugin, opts.Manifest)
	}
	return plugin, nil
}
