// Package zeroconf advertises the strip daemon as an mDNS/DNS-SD service
// so controllers on the LAN can find it without configuration.
package zeroconf

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/grandcat/zeroconf"

	"github.com/micro-nova/ws281x-go/internal/identity"
	"github.com/micro-nova/ws281x-go/internal/models"
)

// ServiceType is the DNS-SD service type registered by the daemon.
const ServiceType = "_ws281x._tcp"

// Service manages mDNS service registration.
type Service struct {
	name string // instance name, usually the hostname
	port int
	txt  []string
}

// New creates a zeroconf Service advertising port with the given TXT records.
func New(name string, port int, txt []string) *Service {
	return &Service{
		name: name,
		port: port,
		txt:  txt,
	}
}

// TXTRecords describes the strip in DNS-SD TXT form: version, driver,
// board model and the LED count of every channel ("ch0=60").
func TXTRecords(info identity.Info, st models.State) []string {
	txt := []string{
		"version=" + info.Version,
		"model=" + info.Model,
		"driver=" + st.Driver,
	}
	total := 0
	for _, ch := range st.Channels {
		txt = append(txt, "ch"+strconv.Itoa(ch.Index)+"="+strconv.Itoa(ch.Count))
		total += ch.Count
	}
	return append(txt, "leds="+strconv.Itoa(total))
}

// Start registers the mDNS service and blocks until ctx is cancelled, at which
// point it shuts down the server cleanly.
func (s *Service) Start(ctx context.Context) error {
	server, err := zeroconf.Register(
		s.name,      // instance name
		ServiceType, // service type
		"local.",    // domain
		s.port,      // port
		s.txt,       // TXT records
		nil,         // ifaces, nil means all interfaces
	)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	slog.Info("zeroconf: registered mDNS service",
		"name", s.name,
		"type", ServiceType,
		"port", s.port,
		"txt", s.txt,
	)

	<-ctx.Done()

	server.Shutdown()
	slog.Info("zeroconf: mDNS service unregistered")
	return nil
}
