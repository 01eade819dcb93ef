package dor

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/domhub/hubmoni/pkg/logger"
)

// State is the firmware/boot state of a DOM.
type State string

const (
	StateNoComm     State = "nocomm"
	StateDOMApp     State = "domapp"
	StateIceboot    State = "iceboot"
	StateConfigboot State = "configboot"
	StateUnknown    State = "unknown"
	StateError      State = "error"
	// StateBusy is reported when no answer arrived before the poll deadline.
	StateBusy State = "busy"
	// StateNoPlug is reported for coordinates with no DOM in the tree.
	StateNoPlug State = "noplug"
)

const (
	DefaultSettleDelay  = 200 * time.Millisecond
	DefaultReadInterval = 100 * time.Millisecond
	BlockSize           = 4092
)

var (
	domappRequest  = []byte{0x01, 0x0a, 0x00, 0x00, 0x0d, 0x0a, 0x00, 0x00}
	domappResponse = []byte{0x01, 0x0a, 0x00, 0x0c, 0x0d, 0x0a, 0x00, 0x01}
)

const domappResponseLen = 20

var (
	icebootPrompt    = []byte("> ")
	configbootPrompt = []byte("# ")
)

// Target is what the detector needs from a DOM.
type Target interface {
	CWD() string
	Dev() string
	IsCommunicating() (bool, error)
}

// Detector runs the boot-state request/response exchange with one DOM.
type Detector struct {
	Opener       ChannelOpener
	SettleDelay  time.Duration
	ReadInterval time.Duration
	Logger       logrus.FieldLogger
}

// NewDetector returns a detector with the driver's default timing.
func NewDetector(opener ChannelOpener, log logrus.FieldLogger) *Detector {
	if opener == nil {
		opener = DeviceOpener{}
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Detector{
		Opener:       opener,
		SettleDelay:  DefaultSettleDelay,
		ReadInterval: DefaultReadInterval,
		Logger:       log,
	}
}

// Zero-value fields fall back to the device opener and a discarding logger.
func (d *Detector) opener() ChannelOpener {
	if d.Opener == nil {
		return DeviceOpener{}
	}

	return d.Opener
}

func (d *Detector) fieldLogger() logrus.FieldLogger {
	if d.Logger == nil {
		return logger.Discard()
	}

	return d.Logger
}

// Detect queries the DOM and classifies its answer. A DOM that is not
// communicating is never opened. The channel is always closed before
// returning.
func (d *Detector) Detect(ctx context.Context, t Target) State {
	log := d.fieldLogger().WithField("cwd", t.CWD())

	ok, err := t.IsCommunicating()
	if err != nil {
		log.WithError(err).Debug("communication flag unreadable")
		return StateNoComm
	}

	if !ok {
		return StateNoComm
	}

	ch, err := d.opener().Open(t.Dev())
	if err != nil {
		log.WithError(err).Warn("could not open DOM channel")
		return StateError
	}

	defer func() {
		if err := ch.Close(); err != nil {
			log.WithError(err).Warn("could not close DOM channel")
		}
	}()

	state := d.exchange(ctx, ch)
	if ctx.Err() != nil {
		// the answer may be truncated; the poller treats this as no answer
		return StateBusy
	}

	log.WithField("state", state).Debug("DOM state detected")

	return state
}

func (d *Detector) exchange(ctx context.Context, ch Channel) State {
	if _, err := ch.Write(domappRequest); err != nil {
		d.fieldLogger().WithError(err).Debug("domapp request write failed")
		return StateUnknown
	}

	resp := d.drain(ctx, ch)
	if len(resp) == domappResponseLen && bytes.Equal(resp[:len(domappResponse)], domappResponse) {
		return StateDOMApp
	}

	if _, err := ch.Write([]byte("\r")); err != nil {
		d.fieldLogger().WithError(err).Debug("prompt request write failed")
		return StateUnknown
	}

	resp = d.drain(ctx, ch)

	switch {
	case bytes.Contains(resp, icebootPrompt):
		return StateIceboot
	case bytes.Contains(resp, configbootPrompt):
		return StateConfigboot
	default:
		return StateUnknown
	}
}

// drain waits for the DOM to answer, then reads until the channel runs dry.
func (d *Detector) drain(ctx context.Context, r io.Reader) []byte {
	var resp []byte

	if !sleepCtx(ctx, d.SettleDelay) {
		return resp
	}

	buf := make([]byte, BlockSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			resp = append(resp, buf[:n]...)
		}

		if err != nil || n == 0 {
			return resp
		}

		if !sleepCtx(ctx, d.ReadInterval) {
			return resp
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
