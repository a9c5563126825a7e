package workers

import (
	"chat-relay/contract"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is a dependency whose reachability decides the serving status.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HeartbeatWorker periodically pings the store and the bridge, publishes the
// result on the gRPC health service and logs the process footprint.
type HeartbeatWorker struct {
	log      *slog.Logger
	health   *health.Server
	checks   map[string]Pinger
	registry contract.IConnectionRegistry
	interval time.Duration
}

// NewHeartbeatWorker checks every entry of checks each interval.
func NewHeartbeatWorker(log *slog.Logger, health *health.Server, registry contract.IConnectionRegistry,
	interval time.Duration, checks map[string]Pinger) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:      log,
		health:   health,
		checks:   checks,
		registry: registry,
		interval: interval,
	}
}

// Run publishes the status of each check under its name, and NOT_SERVING overall while any fails.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Beat(ctx, p)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Beat(ctx, p)
		}
	}
}

// Beat runs the checks once; the overall service serves only when every check passes.
func (w *HeartbeatWorker) Beat(ctx context.Context, p *process.Process) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, check := range w.checks {
		status := healthpb.HealthCheckResponse_SERVING
		checkCtx, cancel := context.WithTimeout(ctx, w.interval)
		if err := check.Ping(checkCtx); err != nil {
			w.log.Warn("Health check failed", "component", name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
		}
		cancel()
		w.health.SetServingStatus(name, status)
	}
	w.health.SetServingStatus("", overall)

	if p == nil {
		return
	}
	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Debug("Failed to collect self stats", "error", err)
		return
	}
	w.log.Debug("Heartbeat",
		"status", overall.String(),
		"connections", w.registry.Len(),
		"rss_bytes", rss,
		"cpu_percent", cpu)
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
