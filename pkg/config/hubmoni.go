package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HubMoni is the hub monitoring daemon configuration. Key names follow the
// legacy hubmoni.config file.
type HubMoni struct {
	MoniService      string          `json:"MONI_SERVICE" yaml:"MONI_SERVICE"`
	MoniPriority     int             `json:"MONI_PRIORITY" yaml:"MONI_PRIORITY"`
	MoniVersion      int             `json:"MONI_VERSION" yaml:"MONI_VERSION"`
	AlertService     string          `json:"ALERT_SERVICE" yaml:"ALERT_SERVICE"`
	AlertNotifies    []string        `json:"ALERT_NOTIFIES" yaml:"ALERT_NOTIFIES"`
	AlertPriority    int             `json:"ALERT_PRIORITY" yaml:"ALERT_PRIORITY"`
	AlertPages       bool            `json:"ALERT_PAGES" yaml:"ALERT_PAGES"`
	HubConfig        string          `json:"HUBCONFIG" yaml:"HUBCONFIG"`
	DORPrefix        string          `json:"DOR_PREFIX" yaml:"DOR_PREFIX"`
	DevDir           string          `json:"DEV_DIR" yaml:"DEV_DIR"`
	Nicknames        string          `json:"NICKNAMES" yaml:"NICKNAMES"`
	MoniPeriod       Duration        `json:"MONI_PERIOD" yaml:"MONI_PERIOD"`
	MoniReportPeriod Duration        `json:"MONI_REPORT_PERIOD" yaml:"MONI_REPORT_PERIOD"`
	SocketWait       Duration        `json:"SOCKET_WAIT" yaml:"SOCKET_WAIT"`
	ZMQHostname      string          `json:"ZMQ_HOSTNAME" yaml:"ZMQ_HOSTNAME"`
	ZMQPort          int             `json:"ZMQ_PORT" yaml:"ZMQ_PORT"`
	CollectorPath    string          `json:"COLLECTOR_PATH" yaml:"COLLECTOR_PATH"`
	AlertGracePeriod Duration        `json:"ALERT_GRACE_PERIOD" yaml:"ALERT_GRACE_PERIOD"`
	MaxLoopCount     int             `json:"MAX_LOOP_CNT" yaml:"MAX_LOOP_CNT"`
	StateTimeout     Duration        `json:"STATE_TIMEOUT" yaml:"STATE_TIMEOUT"`
	PIDFile          string          `json:"PID_FILE" yaml:"PID_FILE"`
	PauseFile        string          `json:"PAUSE_FILE" yaml:"PAUSE_FILE"`
	LogFile          string          `json:"LOG_FILE" yaml:"LOG_FILE"`
	LogLevel         string          `json:"LOG_LEVEL" yaml:"LOG_LEVEL"`
	DBPath           string          `json:"DB_PATH" yaml:"DB_PATH"`
	Retention        Duration        `json:"RETENTION" yaml:"RETENTION"`
	PowerHistory     int             `json:"POWER_HISTORY" yaml:"POWER_HISTORY"`
	APIAddr          string          `json:"API_ADDR" yaml:"API_ADDR"`
	HealthAddr       string          `json:"HEALTH_ADDR" yaml:"HEALTH_ADDR"`
	Webhooks         []WebhookConfig `json:"WEBHOOKS" yaml:"WEBHOOKS"`
}

// WebhookConfig represents a webhook notification configuration.
type WebhookConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	URL      string   `json:"url" yaml:"url"`
	Cooldown Duration `json:"cooldown" yaml:"cooldown"`
	Template string   `json:"template" yaml:"template"`
	Headers  []Header `json:"headers,omitempty" yaml:"headers,omitempty"` // Optional custom headers
}

// Header represents a custom HTTP header.
type Header struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// DefaultHubMoni returns the configuration used when no file overrides it.
func DefaultHubMoni() *HubMoni {
	home, _ := os.UserHomeDir()

	return &HubMoni{
		MoniService:      "hubmoni",
		MoniPriority:     3,
		MoniVersion:      2,
		AlertService:     "hubmoni",
		AlertNotifies:    []string{},
		AlertPriority:    1,
		AlertPages:       false,
		HubConfig:        filepath.Join(home, "hubConfig.json"),
		DORPrefix:        "/proc/driver/domhub",
		DevDir:           "/dev",
		MoniPeriod:       Duration(120 * time.Second),
		MoniReportPeriod: Duration(3600 * time.Second),
		SocketWait:       Duration(60 * time.Second),
		ZMQHostname:      "expcont",
		ZMQPort:          6668,
		CollectorPath:    "/moni",
		AlertGracePeriod: Duration(600 * time.Second),
		MaxLoopCount:     2,
		StateTimeout:     Duration(3 * time.Second),
		PIDFile:          "/tmp/hubmoni.pid",
		PauseFile:        "/tmp/hubmoni.pause",
		LogFile:          "/tmp/hubmoni.log",
		LogLevel:         "info",
		Retention:        Duration(168 * time.Hour),
		PowerHistory:     60,
	}
}

// LoadHubMoni returns the defaults overlaid with path, if path is set.
func LoadHubMoni(path string) (*HubMoni, error) {
	cfg := DefaultHubMoni()
	if path == "" {
		return cfg, cfg.Validate()
	}

	if err := LoadAndValidate(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate implements Validator.
func (c *HubMoni) Validate() error {
	switch {
	case c.MoniPeriod <= 0:
		return fmt.Errorf("%w: MONI_PERIOD must be positive", ErrInvalidConfig)
	case c.MoniReportPeriod < c.MoniPeriod:
		return fmt.Errorf("%w: MONI_REPORT_PERIOD shorter than MONI_PERIOD", ErrInvalidConfig)
	case c.SocketWait <= 0:
		return fmt.Errorf("%w: SOCKET_WAIT must be positive", ErrInvalidConfig)
	case c.ZMQPort <= 0 || c.ZMQPort > 65535:
		return fmt.Errorf("%w: ZMQ_PORT %d out of range", ErrInvalidConfig, c.ZMQPort)
	case c.StateTimeout <= 0:
		return fmt.Errorf("%w: STATE_TIMEOUT must be positive", ErrInvalidConfig)
	case c.MaxLoopCount < 1:
		return fmt.Errorf("%w: MAX_LOOP_CNT must be at least 1", ErrInvalidConfig)
	case c.PowerHistory < 0:
		return fmt.Errorf("%w: POWER_HISTORY must not be negative", ErrInvalidConfig)
	}

	for i, w := range c.Webhooks {
		if w.Enabled && w.URL == "" {
			return fmt.Errorf("%w: webhook %d has no url", ErrInvalidConfig, i)
		}
	}

	return nil
}

// CollectorURL is the websocket endpoint monitoring messages are pushed to.
func (c *HubMoni) CollectorURL() string {
	return fmt.Sprintf("ws://%s:%d%s", c.ZMQHostname, c.ZMQPort, c.CollectorPath)
}
