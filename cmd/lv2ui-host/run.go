package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/justyntemme/lv2extui/pkg/debug"
	"github.com/justyntemme/lv2extui/pkg/extui"
	"github.com/justyntemme/lv2extui/pkg/host"
	"github.com/justyntemme/lv2extui/pkg/metadata"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the plugin's external UI",
		Long: `Run opens the first external UI the plugin declares and drives it until
the UI stops or the process receives SIGINT or SIGTERM. Control changes
written by the UI are applied to the ports declared in the manifest.

No plugin is loaded: the UI receives a NULL instance-access handle.`,
		Args: cobra.NoArgs,
		RunE: runUI,
	}
}

func runUI(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := opts.logger(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	plugin, err := findPlugin(opts)
	if err != nil {
		return err
	}
	ports, err := buildPorts(plugin.Ports)
	if err != nil {
		return err
	}

	uis, err := extui.PluginUIs(plugin.Entries())
	if err != nil {
		return fmt.Errorf("discover UIs of %s: %w", plugin.URI, err)
	}
	external := extui.ExternalUIs(uis)
	if len(external) == 0 {
		return fmt.Errorf("plugin %s declares no external UI", plugin.URI)
	}
	ui := external[0]

	label := plugin.Name
	if label == "" {
		label = plugin.URI
	}
	cfg := extui.DefaultConfig()
	cfg.Logger = log.WithPrefix("extui")
	cfg.RunInterval = opts.UIInterval
	cfg.PluginLabel = label

	session, err := extui.Open(ui, host.NewStaticInstance(plugin.URI, nil), cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return errors.Join(err, session.Close())
	}
	log.Info("running UI %s for %s (session %s)", ui.URI, plugin.URI, session.ID())

	pollErr := pollLoop(ctx, session, ports, opts.HostInterval, log)
	closeErr := session.Close()

	for _, p := range ports.All() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p)
	}

	return errors.Join(pollErr, closeErr)
}

// pollLoop applies control messages until ctx is done or the UI goroutine
// stops on its own.
func pollLoop(ctx context.Context, session *extui.Session, ports *host.Ports, interval time.Duration, log *debug.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-session.Done():
			return session.Err()
		case <-ticker.C:
			applied, ignored := host.Poll(session.Instance(), ports)
			if applied+ignored > 0 {
				log.Debug("applied %d control messages, ignored %d", applied, ignored)
			}
		}
	}
}

func buildPorts(decls []metadata.PortDecl) (*host.Ports, error) {
	ports := host.NewPorts()
	for _, d := range decls {
		b := host.NewPort(d.Index, d.Symbol).Range(d.Min, d.Max).Default(d.Default)
		if d.Name != "" {
			b = b.Name(d.Name)
		}
		if err := ports.Add(b.Build()); err != nil {
			return nil, err
		}
	}
	return ports, nil
}
