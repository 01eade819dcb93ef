package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/domhub/hubmoni/pkg/config"
	"github.com/domhub/hubmoni/pkg/logger"
	"github.com/domhub/hubmoni/pkg/moni"
)

const (
	webhookTimeout = 10 * time.Second
	webhookBurst   = 5
)

// WebhookAlerter posts hub alerts to an HTTP endpoint, either as the alert
// JSON itself or rendered through a template.
type WebhookAlerter struct {
	config         config.WebhookConfig
	client         *http.Client
	limiter        *rate.Limiter
	logger         logrus.FieldLogger
	lastAlertTimes map[string]time.Time
	mu             sync.Mutex
	bufferPool     *sync.Pool
}

func NewWebhookAlerter(cfg config.WebhookConfig, log logrus.FieldLogger) *WebhookAlerter {
	if log == nil {
		log = logger.Discard()
	}

	return &WebhookAlerter{
		config: cfg,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
		limiter:        rate.NewLimiter(rate.Every(time.Second), webhookBurst),
		logger:         log.WithField("webhook", cfg.URL),
		lastAlertTimes: make(map[string]time.Time),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

func (w *WebhookAlerter) IsEnabled() bool {
	return w.config.Enabled
}

func (w *WebhookAlerter) getTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"json": func(v interface{}) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("JSON marshaling failed: %w", err)
			}

			return string(b), nil
		},
	}
}

func (w *WebhookAlerter) Alert(ctx context.Context, alert *moni.Alert) error {
	if !w.IsEnabled() {
		w.logger.WithField("condition", alert.Value.Condition).Debug("webhook alerter disabled, skipping alert")
		return errWebhookDisabled
	}

	if err := w.checkCooldown(alert); err != nil {
		return err
	}

	payload, err := w.preparePayload(alert)
	if err != nil {
		return fmt.Errorf("failed to prepare payload: %w", err)
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	return w.sendRequest(ctx, payload)
}

// checkCooldown suppresses repeats of the same condition on the same hub.
func (w *WebhookAlerter) checkCooldown(alert *moni.Alert) error {
	if w.config.Cooldown <= 0 {
		return nil
	}

	key := alert.Value.Vars.Cluster + "/" + alert.Value.Condition

	w.mu.Lock()
	defer w.mu.Unlock()

	last, exists := w.lastAlertTimes[key]
	if exists && time.Since(last) < w.config.Cooldown.Std() {
		w.logger.WithField("condition", alert.Value.Condition).Info("alert is within cooldown period, skipping")
		return errWebhookCooldown
	}

	w.lastAlertTimes[key] = time.Now()

	return nil
}

func (w *WebhookAlerter) preparePayload(alert *moni.Alert) ([]byte, error) {
	if w.config.Template == "" {
		b, err := json.Marshal(alert)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal alert: %w", err)
		}

		return b, nil
	}

	return w.executeTemplate(alert)
}

func (w *WebhookAlerter) executeTemplate(alert *moni.Alert) ([]byte, error) {
	tmpl, err := template.New("webhook").
		Funcs(w.getTemplateFuncs()).
		Parse(w.config.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateParse, err)
	}

	buf := w.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer w.bufferPool.Put(buf)

	if err := tmpl.Execute(buf, map[string]interface{}{
		"alert": alert,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", errTemplateExecution, err)
	}

	if !json.Valid(buf.Bytes()) {
		return nil, errInvalidJSON
	}

	return append([]byte(nil), buf.Bytes()...), nil
}

func (w *WebhookAlerter) sendRequest(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	w.setHeaders(req)

	resp, err := w.client.Do(req) //nolint:bodyclose // Response body is closed later
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			w.logger.WithError(err).Warn("failed to close response body")
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return fmt.Errorf("%w: status=%d body=%s", errWebhookStatus, resp.StatusCode, body)
	}

	return nil
}

func (w *WebhookAlerter) setHeaders(req *http.Request) {
	hasContentType := false

	for _, header := range w.config.Headers {
		if strings.EqualFold(header.Key, "content-type") {
			hasContentType = true
		}

		req.Header.Set(header.Key, header.Value)
	}

	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}
}
