package hardware

import (
	"log/slog"
	"unsafe"

	mmap "github.com/edsrzf/mmap-go"
)

const rawColorSize = int(unsafe.Sizeof(RawColor(0)))

// ledBuffer is a channel color buffer allocated outside the Go heap, the way
// a DMA driver hands out memory it owns.
type ledBuffer struct {
	mem  mmap.MMap
	leds []RawColor
}

// allocBuffer maps an anonymous region large enough for count LEDs and
// locks it into RAM when the rlimit allows.
func allocBuffer(count int) (*ledBuffer, error) {
	if count == 0 {
		return &ledBuffer{}, nil
	}
	if count < 0 {
		return nil, ErrDriver("alloc", StatusInvalidStringLength, nil)
	}
	mem, err := mmap.MapRegion(nil, count*rawColorSize, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, ErrDriver("alloc", StatusOutOfMemory, err)
	}
	if err := mem.Lock(); err != nil {
		slog.Debug("buffer: mlock failed, buffer may be swapped", "bytes", len(mem), "err", err)
	}
	leds := unsafe.Slice((*RawColor)(unsafe.Pointer(&mem[0])), count)
	return &ledBuffer{mem: mem, leds: leds}, nil
}

// free unmaps the buffer. Any slice still referring to it becomes invalid.
func (b *ledBuffer) free() error {
	if b == nil || b.mem == nil {
		return nil
	}
	_ = b.mem.Unlock()
	err := b.mem.Unmap()
	b.mem = nil
	b.leds = nil
	return err
}

// allocChannels allocates a buffer for every channel and installs it in cfg.
// On failure nothing stays allocated.
func allocChannels(cfg *Config) ([]*ledBuffer, error) {
	bufs := make([]*ledBuffer, len(cfg.Channels))
	for i := range cfg.Channels {
		b, err := allocBuffer(cfg.Channels[i].Count)
		if err != nil {
			freeChannels(cfg, bufs)
			return nil, err
		}
		bufs[i] = b
		cfg.Channels[i].Leds = b.leds
	}
	return bufs, nil
}

// freeChannels releases buffers from allocChannels and clears cfg's views.
func freeChannels(cfg *Config, bufs []*ledBuffer) {
	for i, b := range bufs {
		if err := b.free(); err != nil {
			slog.Warn("buffer: unmap failed", "channel", i, "err", err)
		}
		cfg.Channels[i].Leds = nil
	}
}
