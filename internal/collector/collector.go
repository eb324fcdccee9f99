package collector

import (
	"fmt"
	"log"
	"sync"

	"NetFlowSond/internal/config"
	"NetFlowSond/internal/diag"
	"NetFlowSond/internal/factory"
	"NetFlowSond/internal/model"
)

// Collector owns the full set of probe listeners.
type Collector struct {
	listeners []*Listener
	wg        sync.WaitGroup
}

// New builds one listener per configured probe. Every probe gets its own
// sink instance, connected (and schema-provisioned) before the listener
// binds. Any failure tears down what was already built and is fatal.
func New(cfg *config.Config, recorder *diag.Recorder, display bool) (*Collector, error) {
	c := &Collector{}
	for _, probe := range cfg.Probes {
		sink, err := factory.Create(&cfg.Storage)
		if err != nil {
			c.teardown()
			return nil, err
		}
		if err := sink.Connect(); err != nil {
			c.teardown()
			return nil, fmt.Errorf("cannot connect storage for probe %s: %w", probe.Name, err)
		}
		listener, err := NewListener(probe, sink, recorder, display)
		if err != nil {
			sink.Close()
			c.teardown()
			return nil, err
		}
		c.listeners = append(c.listeners, listener)
	}
	return c, nil
}

func (c *Collector) teardown() {
	for _, l := range c.listeners {
		l.Stop()
		l.sink.Close()
	}
	c.listeners = nil
}

// Start launches one receive goroutine per probe.
func (c *Collector) Start() {
	for _, l := range c.listeners {
		c.wg.Add(1)
		go func(l *Listener) {
			defer c.wg.Done()
			l.Run()
		}(l)
		log.Printf("Listening for probe %s on UDP port %d", l.probe.Name, l.probe.Port)
	}
}

// Stop closes every socket, waits for the receive loops to drain, then
// closes the sinks.
func (c *Collector) Stop() {
	for _, l := range c.listeners {
		l.Stop()
	}
	c.wg.Wait()
	for _, l := range c.listeners {
		if err := l.sink.Close(); err != nil {
			log.Printf("probe %s: error closing sink: %v", l.probe.Name, err)
		}
	}
	log.Println("Collector stopped.")
}

// Stats returns a snapshot of every listener's counters, in probe
// configuration order.
func (c *Collector) Stats() []model.ProbeStats {
	stats := make([]model.ProbeStats, 0, len(c.listeners))
	for _, l := range c.listeners {
		stats = append(stats, l.Stats())
	}
	return stats
}

// CheckStorage validates the configured backend without starting any
// listener: a reachability check first, then a connect that provisions the
// schema, then a clean close. Used by the offline -checkdb path.
func CheckStorage(cfg *config.StorageConfig) error {
	sink, err := factory.Create(cfg)
	if err != nil {
		return err
	}
	if err := sink.Ping(); err != nil {
		return fmt.Errorf("storage reachability check failed: %w", err)
	}
	if err := sink.Connect(); err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	return sink.Close()
}
