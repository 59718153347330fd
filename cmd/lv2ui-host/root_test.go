package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/lv2extui/pkg/debug"
	"github.com/justyntemme/lv2extui/pkg/extui/extuitest"
)

const testManifest = `
plugins:
  - uri: urn:test:synth
    name: Test Synth
    ports:
      - {index: 5, symbol: cutoff, min: 20, max: 20000, default: 1000}
      - {index: 9, symbol: gain, max: 1, default: 0.5}
    uis:
      - uri: urn:test:synth#ext
        types: [http://kxstudio.sf.net/ns/lv2ext/external-ui#Widget]
        binary: file:///usr/lib/lv2/synth.lv2/synth_ui.so
        bundle: file:///usr/lib/lv2/synth.lv2/
      - uri: urn:test:synth#broken
        types: [http://kxstudio.sf.net/ns/lv2ext/external-ui#Widget]
        bundle: file:///usr/lib/lv2/synth.lv2/
      - uri: urn:test:synth#gtk
        types: [http://lv2plug.in/ns/extensions/ui#GtkUI]
  - uri: urn:test:plain
    uis:
      - uri: urn:test:plain#gtk
        types: [http://lv2plug.in/ns/extensions/ui#GtkUI]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand("test", "abc123", "today")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.0.0", "abc123", "2025-01-01")

	assert.Equal(t, "lv2ui-host", cmd.Use)
	assert.Equal(t, "1.0.0 (commit: abc123, built: 2025-01-01)", cmd.Version)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "run"}, names)

	for _, flag := range []string{"config", "manifest", "plugin", "ui-interval", "host-interval", "log-level", "log-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestListCommand(t *testing.T) {
	manifest := writeFile(t, "manifest.yaml", testManifest)

	stdout, stderr, err := execute(t, "list", "--manifest", manifest, "--plugin", "urn:test:synth")
	require.NoError(t, err)

	assert.Contains(t, stdout, "urn:test:synth: 2 UI(s)")
	assert.Contains(t, stdout, "external     urn:test:synth#ext")
	assert.Contains(t, stdout, "binary     /usr/lib/lv2/synth.lv2/synth_ui.so")
	assert.Contains(t, stdout, "unsupported  urn:test:synth#gtk")
	assert.Contains(t, stderr, "urn:test:synth#broken")
}

func TestListUnknownPlugin(t *testing.T) {
	manifest := writeFile(t, "manifest.yaml", testManifest)

	_, _, err := execute(t, "list", "--manifest", manifest, "--plugin", "urn:test:missing")
	assert.ErrorContains(t, err, "plugin urn:test:missing not found")
}

func TestRunRequiresExternalUI(t *testing.T) {
	manifest := writeFile(t, "manifest.yaml", testManifest)

	_, _, err := execute(t, "run", "--manifest", manifest, "--plugin", "urn:test:plain", "--log-level", "off")
	assert.ErrorContains(t, err, "declares no external UI")

	_, _, err = execute(t, "run", "--manifest", manifest, "--plugin", "urn:test:synth", "--log-level", "off")
	assert.ErrorContains(t, err, "urn:test:synth#broken")
}

func TestRunMissingBinary(t *testing.T) {
	manifest := writeFile(t, "manifest.yaml", `
plugins:
  - uri: urn:test:synth
    uis:
      - uri: urn:test:synth#ext
        types: [http://kxstudio.sf.net/ns/lv2ext/external-ui#Widget]
        binary: file:///nonexistent/lv2extui/ui.so
        bundle: file:///nonexistent/lv2extui/
`)

	_, _, err := execute(t, "run", "--manifest", manifest, "--plugin", "urn:test:synth", "--log-level", "off")
	assert.ErrorContains(t, err, "failed to load external UI library /nonexistent/lv2extui/ui.so")
}

func TestRunDrivesExternalUI(t *testing.T) {
	binary := extuitest.BuildModule(t, extuitest.Full)
	bundle := filepath.Dir(binary)
	// Port 5 is left undeclared so its messages take the ignored path.
	manifest := writeFile(t, "manifest.yaml", fmt.Sprintf(`
plugins:
  - uri: urn:test:synth
    name: Test Synth
    ports:
      - {index: 9, symbol: gain, max: 1, default: 0}
    uis:
      - uri: urn:test:synth#ext
        types: [http://kxstudio.sf.net/ns/lv2ext/external-ui#Widget]
        binary: file://%s
        bundle: file://%s/
`, binary, bundle))
	logFile := filepath.Join(t.TempDir(), "lv2ui-host.log")
	defaultOutput, defaultLevel := debug.Default().Output(), debug.Default().Level()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	stdout, stderr, err := executeContext(t, ctx, "run",
		"--manifest", manifest, "--plugin", "urn:test:synth",
		"--ui-interval", "5ms", "--host-interval", "5ms",
		"--log-level", "debug", "--log-file", logFile)
	require.NoError(t, err)

	assert.Equal(t, "9:gain=0.5\n", stdout)
	assert.Empty(t, stderr)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	logs := string(data)
	assert.Contains(t, logs, "[INFO] [lv2ui-host] running UI urn:test:synth#ext for urn:test:synth")
	assert.Contains(t, logs, "[DEBUG] [lv2extui] ignored control message")

	assert.Equal(t, defaultOutput, debug.Default().Output())
	assert.Equal(t, defaultLevel, debug.Default().Level())
}

// parseOptions runs loadOptions against a bare command carrying the driver
// flags.
func parseOptions(t *testing.T, args ...string) (options, error) {
	t.Helper()
	var opts options
	var loadErr error
	cmd := &cobra.Command{
		Use:  "test",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, loadErr = loadOptions(cmd)
			return nil
		},
	}
	bindFlags(cmd)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())
	return opts, loadErr
}

func TestLoadOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		opts, err := parseOptions(t, "--manifest", "m.yaml", "--plugin", "urn:p")
		require.NoError(t, err)
		assert.Equal(t, "m.yaml", opts.Manifest)
		assert.Equal(t, "urn:p", opts.Plugin)
		assert.Equal(t, 100*time.Millisecond, opts.UIInterval)
		assert.Equal(t, defaultHostInterval, opts.HostInterval)
		assert.Equal(t, "info", opts.LogLevel)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		config := writeFile(t, "lv2ui-host.yaml", `
manifest: /etc/lv2/manifest.yaml
plugin: urn:from:file
ui_interval: 20ms
host_interval: 1s
log_level: debug
`)
		opts, err := parseOptions(t, "--config", config)
		require.NoError(t, err)
		assert.Equal(t, "/etc/lv2/manifest.yaml", opts.Manifest)
		assert.Equal(t, "urn:from:file", opts.Plugin)
		assert.Equal(t, 20*time.Millisecond, opts.UIInterval)
		assert.Equal(t, time.Second, opts.HostInterval)
		assert.Equal(t, "debug", opts.LogLevel)
	})

	t.Run("FlagsOverrideFile", func(t *testing.T) {
		config := writeFile(t, "lv2ui-host.yaml", "manifest: a.yaml\nplugin: urn:a\nui_interval: 20ms\n")
		opts, err := parseOptions(t, "--config", config, "--plugin", "urn:b", "--ui-interval", "5ms")
		require.NoError(t, err)
		assert.Equal(t, "a.yaml", opts.Manifest)
		assert.Equal(t, "urn:b", opts.Plugin)
		assert.Equal(t, 5*time.Millisecond, opts.UIInterval)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := parseOptions(t, "--plugin", "urn:p")
		assert.ErrorContains(t, err, "no manifest given")

		_, err = parseOptions(t, "--manifest", "m.yaml")
		assert.ErrorContains(t, err, "no plugin given")

		_, err = parseOptions(t, "--manifest", "m.yaml", "--plugin", "urn:p", "--log-level", "loud")
		assert.ErrorContains(t, err, `unknown log level "loud"`)

		_, err = parseOptions(t, "--manifest", "m.yaml", "--plugin", "urn:p", "--host-interval", "0s")
		assert.ErrorContains(t, err, "intervals must be positive")

		_, err = parseOptions(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoggerToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lv2ui-host.log")
	opts := defaultOptions()
	opts.LogFile = path
	opts.LogLevel = "warn"

	var previous bytes.Buffer
	debug.SetOutput(&previous)
	t.Cleanup(func() { debug.SetOutput(os.Stderr) })

	log, closeLog, err := opts.logger(NewRootCommand("test", "", ""))
	require.NoError(t, err)

	log.Info("not written")
	log.Warn("port %d out of range", 7)
	debug.Warn("control message for port %d dropped", 3)

	closeLog()
	log.Warn("after close")
	debug.Warn("back on the previous output")

	assert.Equal(t, debug.LogLevelInfo, debug.Default().Level())
	assert.Contains(t, previous.String(), "[WARN] [lv2extui] back on the previous output")
	assert.NotContains(t, previous.String(), "port 3 dropped")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[WARN] [lv2ui-host] port 7 out of range")
	assert.Contains(t, string(data), "[WARN] [lv2extui] control message for port 3 dropped")
	assert.NotContains(t, string(data), "not written")
	assert.NotContains(t, string(data), "after close")
	assert.NotContains(t, string(data), "previous output")
}
