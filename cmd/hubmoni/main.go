// cmd/hubmoni/main.go
//
// hubmoni watches the DOR cards of a DOMHub. It reports DOM power and
// communication statistics to the collector and alerts when the hub no
// longer matches its expected configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/domhub/hubmoni/pkg/alerts"
	"github.com/domhub/hubmoni/pkg/api"
	"github.com/domhub/hubmoni/pkg/config"
	"github.com/domhub/hubmoni/pkg/db"
	"github.com/domhub/hubmoni/pkg/dor"
	"github.com/domhub/hubmoni/pkg/hubmoni"
	"github.com/domhub/hubmoni/pkg/lifecycle"
	"github.com/domhub/hubmoni/pkg/lockfile"
	"github.com/domhub/hubmoni/pkg/logger"
	"github.com/domhub/hubmoni/pkg/metrics"
	"github.com/domhub/hubmoni/pkg/nicknames"
	"github.com/domhub/hubmoni/pkg/push"
)

const (
	serviceName = "hubmoni"

	// simulation runs as this host
	simulatedHost = "ichub29.spts.icecube.wisc.edu"
)

type options struct {
	configFile string
	hubConfig  string
	host       string
	port       int
	dorPrefix  string
	period     float64
	report     float64
	simulate   bool
	verbose    bool
	pauseHours float64
	resume     bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hubmoni: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options

	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	flags.StringVarP(&opts.configFile, "file", "f", "", "daemon configuration file (JSON or YAML)")
	flags.StringVarP(&opts.hubConfig, "config", "c", "", "hub configuration file")
	flags.StringVarP(&opts.host, "host", "H", "", "monitoring listener hostname")
	flags.IntVarP(&opts.port, "port", "p", 0, "monitoring listener port number")
	flags.StringVarP(&opts.dorPrefix, "dor", "d", "", "DOR procfile prefix")
	flags.Float64VarP(&opts.period, "time", "t", 0, "time between monitoring checks, in seconds")
	flags.Float64VarP(&opts.report, "report", "r", 0, "time between monitoring reports, in seconds")
	flags.BoolVarP(&opts.simulate, "simulate", "s", false, "don't send JSON data")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print monitoring records to STDOUT")
	flags.Float64VarP(&opts.pauseHours, "pause", "P", 0, "pause alerts for this many hours and exit")
	flags.BoolVar(&opts.resume, "resume", false, "resume paused alerts and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	cfg, err := config.LoadHubMoni(opts.configFile)
	if err != nil {
		return err
	}

	if err := applyFlags(cfg, flags, &opts); err != nil {
		return err
	}

	switch {
	case flags.Changed("pause"):
		until, err := hubmoni.Pause(cfg.PauseFile, time.Duration(opts.pauseHours*float64(time.Hour)), time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("alerts paused until %s\n", until.Format(time.RFC3339))

		return nil
	case opts.resume:
		return hubmoni.Resume(cfg.PauseFile)
	}

	lock, err := lockfile.Acquire(cfg.PIDFile)
	if errors.Is(err, lockfile.ErrLocked) {
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "%s appears to be running already, exiting.\n", os.Args[0])
		}

		return nil
	}

	if err != nil {
		return err
	}

	defer func() { _ = lock.Release() }()

	log, closer := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Verbose: opts.verbose,
		File:    cfg.LogFile,
	})
	defer func() { _ = closer.Close() }()

	return runDaemon(cfg, &opts, log)
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.HubMoni, flags *pflag.FlagSet, opts *options) error {
	if flags.Changed("config") {
		cfg.HubConfig = opts.hubConfig
	}

	if flags.Changed("host") {
		cfg.ZMQHostname = opts.host
	}

	if flags.Changed("port") {
		cfg.ZMQPort = opts.port
	}

	if flags.Changed("dor") {
		cfg.DORPrefix = opts.dorPrefix
	}

	if flags.Changed("time") {
		cfg.MoniPeriod = seconds(opts.period)
	}

	if flags.Changed("report") {
		cfg.MoniReportPeriod = seconds(opts.report)
	}

	return cfg.Validate()
}

func seconds(s float64) config.Duration {
	return config.Duration(s * float64(time.Second))
}

func runDaemon(cfg *config.HubMoni, opts *options, log *logrus.Logger) error {
	driver := dor.New(cfg.DORPrefix, driverOptions(cfg, log)...)

	hubCfg, err := loadHubConfig(cfg.HubConfig)
	if err != nil {
		log.WithError(err).Errorf("couldn't open hub configuration file %s; exiting!", cfg.HubConfig)
		return err
	}

	hub, cluster, err := config.LocalHostCluster()
	if opts.simulate {
		hub, cluster = config.HostCluster(simulatedHost)
	} else if err != nil {
		return fmt.Errorf("couldn't determine host name: %w", err)
	}

	svcOpts := []hubmoni.Option{
		hubmoni.WithLogger(log),
		hubmoni.WithSimulate(opts.simulate),
	}

	if opts.verbose {
		svcOpts = append(svcOpts, hubmoni.WithEcho(push.NewWriterSink(os.Stdout)))
	}

	if !opts.simulate {
		svcOpts = append(svcOpts, hubmoni.WithSink(push.NewWebSocketSink(cfg.CollectorURL(), cfg.SocketWait.Std(), log)))
	}

	var store db.Service

	if cfg.DBPath != "" {
		if store, err = db.New(cfg.DBPath, log); err != nil {
			return err
		}

		svcOpts = append(svcOpts, hubmoni.WithStore(store))
	}

	var power *metrics.Manager

	if cfg.PowerHistory > 0 {
		power = metrics.NewManager(cfg.PowerHistory, log)
		svcOpts = append(svcOpts, hubmoni.WithPowerHistory(power))
	}

	svcOpts = append(svcOpts, hubmoni.WithAlerters(webhooks(cfg.Webhooks, log)...))

	svc := hubmoni.New(cfg, driver, hubCfg, hub, cluster, svcOpts...)

	var handler http.Handler

	if cfg.APIAddr != "" {
		srv := api.NewAPIServer(hub, driver, log)
		srv.SetActiveAlertsHandler(svc.ActiveAlerts)

		if power != nil {
			srv.SetPowerHandler(power.GetPoints)
		}

		if store != nil {
			srv.SetDOMHistoryHandler(store.GetDOMHistory)
			srv.SetAlertHistoryHandler(store.GetAlerts)
		}

		handler = srv.Handler()
	}

	return lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ServiceName: serviceName,
		Service:     svc,
		ListenAddr:  cfg.HealthAddr,
		HTTPAddr:    cfg.APIAddr,
		HTTPHandler: handler,
		Logger:      log,
	})
}

// webhooks builds the enabled alert webhooks. A template named "discord"
// selects the built-in Discord embed.
func webhooks(cfgs []config.WebhookConfig, log logrus.FieldLogger) []alerts.AlertService {
	var out []alerts.AlertService

	for _, wh := range cfgs {
		if !wh.Enabled {
			continue
		}

		if wh.Template == "discord" {
			out = append(out, alerts.NewDiscordWebhook(wh.URL, wh.Cooldown.Std(), log))
			continue
		}

		out = append(out, alerts.NewWebhookAlerter(wh, log))
	}

	return out
}

func driverOptions(cfg *config.HubMoni, log logrus.FieldLogger) []dor.Option {
	opts := []dor.Option{
		dor.WithDevDir(cfg.DevDir),
		dor.WithStateTimeout(cfg.StateTimeout.Std()),
		dor.WithLogger(log),
	}

	nicks, err := loadNicknames(cfg.Nicknames)
	if err != nil {
		log.WithError(err).Warn("DOM positions and names unavailable")
		return opts
	}

	return append(opts, dor.WithNicknames(nicks))
}

func loadNicknames(path string) (*nicknames.Nicknames, error) {
	if path != "" {
		return nicknames.Load(path)
	}

	return nicknames.Find(nicknames.DefaultFile, nicknames.DefaultSearchPaths())
}

// loadHubConfig reads JSON or YAML hub configurations, or the legacy
// whitespace separated hubConfig.dat table.
func loadHubConfig(path string) (config.HubConfig, error) {
	if filepath.Ext(path) == ".dat" {
		return config.LoadLegacyHubConfig(path)
	}

	return config.LoadHubConfig(path)
}
