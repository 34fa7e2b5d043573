package hardware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Mock is a thread-safe in-memory driver for testing and development.
// It records every call so tests can check ordering, counts and overlap.
type Mock struct {
	mu         sync.Mutex
	delay      time.Duration // simulated transmission time
	failInit   Status
	failRender Status
	failWait   Status
	calls      []string
	renders    int
	waits      int
	finis      int
	pending    bool
	frames     [RpiPwmChannels][]RawColor

	active   atomic.Int32
	overlaps atomic.Int32
}

// NewMock creates a mock driver with no simulated latency.
func NewMock() *Mock {
	return &Mock{}
}

// NewMockWithDelay creates a mock driver whose Render and Wait take at
// least d, which widens the window for catching overlapping calls.
func NewMockWithDelay(d time.Duration) *Mock {
	return &Mock{delay: d}
}

// SetFailInit configures Init to fail with s. StatusSuccess clears it.
func (m *Mock) SetFailInit(s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failInit = s
}

// SetFailRender configures Render to fail with s. StatusSuccess clears it.
func (m *Mock) SetFailRender(s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRender = s
}

// SetFailWait configures Wait to fail with s. StatusSuccess clears it.
func (m *Mock) SetFailWait(s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWait = s
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Init(ctx context.Context, cfg *Config) error {
	m.enter("init")
	defer m.exit()
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failInit.Err(); err != nil {
		return ErrDriver("init", m.failInit, nil)
	}
	for i := range cfg.Channels {
		cfg.Channels[i].Leds = make([]RawColor, cfg.Channels[i].Count)
	}
	return nil
}

func (m *Mock) Render(cfg *Config) error {
	m.enter("render")
	defer m.exit()
	time.Sleep(m.delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
	if err := m.failRender.Err(); err != nil {
		return ErrDriver("render", m.failRender, nil)
	}
	for i := range cfg.Channels {
		ch := &cfg.Channels[i]
		frame := make([]RawColor, ch.Count)
		for j, c := range ch.Leds[:ch.Count] {
			frame[j] = RGBW(Scale(c.R(), ch.Brightness), Scale(c.G(), ch.Brightness),
				Scale(c.B(), ch.Brightness), Scale(c.W(), ch.Brightness))
		}
		m.frames[i] = frame
	}
	m.pending = true
	return nil
}

func (m *Mock) Wait(cfg *Config) error {
	m.enter("wait")
	defer m.exit()
	m.mu.Lock()
	pending := m.pending
	m.mu.Unlock()
	if pending {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits++
	m.pending = false
	if err := m.failWait.Err(); err != nil {
		return ErrDriver("wait", m.failWait, nil)
	}
	return nil
}

func (m *Mock) Fini(cfg *Config) {
	m.enter("fini")
	defer m.exit()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finis++
	m.pending = false
	for i := range cfg.Channels {
		cfg.Channels[i].Leds = nil
	}
}

func (m *Mock) enter(op string) {
	if m.active.Add(1) > 1 {
		m.overlaps.Add(1)
	}
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}

func (m *Mock) exit() {
	m.active.Add(-1)
}

// Calls returns the operations invoked so far, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.calls))
	copy(result, m.calls)
	return result
}

// Overlaps returns how many calls started while another was in progress.
func (m *Mock) Overlaps() int { return int(m.overlaps.Load()) }

func (m *Mock) Renders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders
}

func (m *Mock) Waits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waits
}

func (m *Mock) Finis() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finis
}

// LastFrame returns the colors of channel as last rendered, after
// brightness scaling.
func (m *Mock) LastFrame(channel int) []RawColor {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]RawColor, len(m.frames[channel]))
	copy(result, m.frames[channel])
	return result
}

var _ Driver = (*Mock)(nil)
