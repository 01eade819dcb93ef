package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domhub/hubmoni/pkg/config"
)

func TestApplyFlags(t *testing.T) {
	var opts options

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringVarP(&opts.host, "host", "H", "", "")
	flags.IntVarP(&opts.port, "port", "p", 0, "")
	flags.StringVarP(&opts.dorPrefix, "dor", "d", "", "")
	flags.StringVarP(&opts.hubConfig, "config", "c", "", "")
	flags.Float64VarP(&opts.period, "time", "t", 0, "")
	flags.Float64VarP(&opts.report, "report", "r", 0, "")

	require.NoError(t, flags.Parse([]string{"-H", "localhost", "-t", "0.5", "-r", "2"}))

	cfg := config.DefaultHubMoni()
	require.NoError(t, applyFlags(cfg, flags, &opts))

	assert.Equal(t, "localhost", cfg.ZMQHostname)
	assert.Equal(t, 6668, cfg.ZMQPort, "unset flags keep the configured value")
	assert.Equal(t, "/proc/driver/domhub", cfg.DORPrefix)
	assert.Equal(t, 500*time.Millisecond, cfg.MoniPeriod.Std())
	assert.Equal(t, 2*time.Second, cfg.MoniReportPeriod.Std())

	t.Run("invalid result", func(t *testing.T) {
		require.NoError(t, flags.Parse([]string{"-r", "0.1"}))
		require.ErrorIs(t, applyFlags(config.DefaultHubMoni(), flags, &opts), config.ErrInvalidConfig)
	})
}

func TestWebhooks(t *testing.T) {
	got := webhooks([]config.WebhookConfig{
		{Enabled: true, URL: "http://localhost/hook"},
		{Enabled: false, URL: "http://localhost/off"},
		{Enabled: true, URL: "http://localhost/discord", Template: "discord"},
	}, nil)

	require.Len(t, got, 2)

	for _, a := range got {
		assert.True(t, a.IsEnabled())
	}
}

func TestLoadHubConfig(t *testing.T) {
	dir := t.TempDir()

	dat := filepath.Join(dir, "hubConfig.dat")
	require.NoError(t, os.WriteFile(dat, []byte("spts-ichub29 8 4 60 0\n"), 0o600))

	js := filepath.Join(dir, "hubConfig.json")
	require.NoError(t, os.WriteFile(js, []byte(`{"spts": {"ichub29": {"dor": 8, "comm": 60}}}`), 0o600))

	for _, path := range []string{dat, js} {
		hc, err := loadHubConfig(path)
		require.NoError(t, err, path)

		h, err := hc.Hub("ichub29", config.ClusterSPTS)
		require.NoError(t, err)
		assert.Equal(t, 60, h.Comm)
	}
}
