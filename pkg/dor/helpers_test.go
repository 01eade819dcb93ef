package dor

import (
	"fmt"
	"sync"
)

// scriptedChannel answers each write with the chunks returned by reply.
type scriptedChannel struct {
	mu       sync.Mutex
	reply    func(req []byte) [][]byte
	pending  [][]byte
	writeErr error
	block    chan struct{}
	closed   bool
	writes   [][]byte
}

func (c *scriptedChannel) Read(p []byte) (int, error) {
	if c.block != nil {
		<-c.block
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return 0, ErrNoData
	}

	n := copy(p, c.pending[0])
	c.pending = c.pending[1:]

	return n, nil
}

func (c *scriptedChannel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writes = append(c.writes, append([]byte(nil), p...))

	if c.writeErr != nil {
		return 0, c.writeErr
	}

	if c.reply != nil {
		c.pending = append(c.pending, c.reply(p)...)
	}

	return len(p), nil
}

func (c *scriptedChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return nil
}

func (c *scriptedChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

type fakeOpener struct {
	mu       sync.Mutex
	channels map[string]*scriptedChannel
	opened   []string
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{channels: make(map[string]*scriptedChannel)}
}

func (o *fakeOpener) add(path string, ch *scriptedChannel) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.channels[path] = ch
}

func (o *fakeOpener) Open(path string) (Channel, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened = append(o.opened, path)

	ch, ok := o.channels[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such device", ErrChannelOpen, path)
	}

	return ch, nil
}

func (o *fakeOpener) openCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.opened)
}

func domappReply(req []byte) [][]byte {
	if req[0] != 0x01 {
		return nil
	}

	resp := append([]byte{}, domappResponse...)
	resp = append(resp, make([]byte, domappResponseLen-len(domappResponse))...)

	return [][]byte{resp[:8], resp[8:]}
}

func promptReply(prompt string) func([]byte) [][]byte {
	return func(req []byte) [][]byte {
		if string(req) != "\r" {
			return [][]byte{[]byte("?")}
		}

		return [][]byte{[]byte("\r\n"), []byte(prompt)}
	}
}
