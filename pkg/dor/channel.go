package dor

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Channel is an open, non-blocking DOM device. Read returns ErrNoData when
// nothing is buffered.
type Channel interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// ChannelOpener opens DOM device channels.
type ChannelOpener interface {
	Open(path string) (Channel, error)
}

// DeviceOpener opens real /dev/dhc* character devices.
type DeviceOpener struct{}

func (DeviceOpener) Open(path string) (Channel, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrChannelOpen, path, err)
	}

	return &deviceChannel{fd: fd}, nil
}

// deviceChannel works on the raw descriptor; os.File would park reads in
// the runtime poller instead of returning EAGAIN.
type deviceChannel struct {
	fd int
}

func (c *deviceChannel) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if errors.Is(err, unix.EAGAIN) {
		return 0, ErrNoData
	}

	if err != nil {
		return 0, err
	}

	return n, nil
}

func (c *deviceChannel) Write(p []byte) (int, error) {
	return unix.Write(c.fd, p)
}

func (c *deviceChannel) Close() error {
	return unix.Close(c.fd)
}
