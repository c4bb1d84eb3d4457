// Package sysload samples host CPU utilization for latency simulation and
// health reporting.
package sysload

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// CPUProvider reports CPU utilization as a fraction in [0, 1]. Readings are
// cached briefly so hot paths never block on a sampling interval.
type CPUProvider struct {
	log zerolog.Logger

	mu       sync.Mutex
	lastLoad float64
	sampled  time.Time
	ttl      time.Duration
}

// NewCPUProvider creates a provider that refreshes its reading at most once
// per second.
func NewCPUProvider(log zerolog.Logger) *CPUProvider {
	return &CPUProvider{
		log: log.With().Str("component", "sysload").Logger(),
		ttl: time.Second,
	}
}

// Load returns the most recent CPU utilization fraction.
func (p *CPUProvider) Load() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.sampled) < p.ttl {
		return p.lastLoad
	}

	// 100ms sampling window keeps the first call on a cold cache cheap.
	percents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(percents) == 0 {
		p.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		return p.lastLoad
	}

	p.lastLoad = percents[0] / 100
	p.sampled = time.Now()
	return p.lastLoad
}

// Snapshot is a point-in-time view of host resource usage.
type Snapshot struct {
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
}

// Sample reads current CPU and memory usage for health reporting.
func (p *CPUProvider) Sample() Snapshot {
	snap := Snapshot{CPUPercent: p.Load() * 100}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return snap
	}
	snap.RAMPercent = memStat.UsedPercent
	return snap
}
