package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Probes serves /health, /healthz and /readyz. Storage is required; the
// optional probes (redis) only degrade readiness.
type Probes struct {
	storage  Pinger
	optional map[string]Pinger
	sockets  func() int
	started  time.Time
	version  string
}

func NewProbes(storage Pinger, version string) *Probes {
	return &Probes{
		storage:  storage,
		optional: map[string]Pinger{},
		started:  time.Now(),
		version:  version,
	}
}

// Optional registers a non-critical dependency under name.
func (p *Probes) Optional(name string, dep Pinger) *Probes {
	p.optional[name] = dep
	return p
}

// Sockets reports live websocket sessions in readiness output.
func (p *Probes) Sockets(count func() int) *Probes {
	p.sockets = count
	return p
}

type readiness struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime"`
	Sockets *int              `json:"ws_connections,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// Liveness only says the process is serving.
func (p *Probes) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness probes every dependency. A failing storage ping is 503,
// a failing optional one marks the response degraded.
func (p *Probes) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	out := readiness{
		Status:  "ready",
		Version: p.version,
		Uptime:  time.Since(p.started).Round(time.Second).String(),
		Checks:  map[string]string{"storage": "ok"},
	}
	code := http.StatusOK

	if err := p.storage.Ping(ctx); err != nil {
		out.Checks["storage"] = err.Error()
		out.Status, code = "unavailable", http.StatusServiceUnavailable
	}

	names := make([]string, 0, len(p.optional))
	for name := range p.optional {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.optional[name].Ping(ctx); err != nil {
			out.Checks[name] = err.Error()
			if code == http.StatusOK {
				out.Status = "degraded"
			}
			continue
		}
		out.Checks[name] = "ok"
	}

	if p.sockets != nil {
		n := p.sockets()
		out.Sockets = &n
	}
	c.JSON(code, out)
}

// Health is the cheap storage-only check used by load balancers.
func (p *Probes) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := p.storage.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "code": "storage_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": p.version})
}
