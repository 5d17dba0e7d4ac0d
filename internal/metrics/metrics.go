package metrics

import (
    "sync"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // WebhookDeliveries counts webhook delivery outcomes by event type and status
    WebhookDeliveries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
        []string{"event_type", "status"},
    )
    // WebhookLatency tracks webhook delivery latencies in milliseconds
    WebhookLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
        []string{"event_type", "status"},
    )

    // SolveDuration records how long a solve request took, by solver kind
    // (exact/heuristic) and objective.
    SolveDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "vrp_solve_duration_seconds", Help: "Solve duration in seconds by solver kind and objective.", Buckets: prometheus.DefBuckets},
        []string{"solver", "objective"},
    )
    // HeuristicIterationsTotal counts PSA iterations completed across all workers.
    HeuristicIterationsTotal = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "vrp_heuristic_iterations_total", Help: "Total PSA iterations completed."},
        []string{"run_id"},
    )
    // HeuristicEnergy tracks the current best objective value per worker.
    HeuristicEnergy = prometheus.NewGaugeVec(
        prometheus.GaugeOpts{Name: "vrp_heuristic_energy", Help: "Current best objective value by worker."},
        []string{"run_id", "worker_id"},
    )
    // ExactNodesExplored counts branch-and-bound nodes visited by the exact solver.
    ExactNodesExplored = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "vrp_exact_nodes_explored_total", Help: "Branch-and-bound nodes explored by the exact solver."},
        []string{"objective"},
    )
)

// RegisterDefault registers collectors to this package's Registry (not
// the Prometheus default registry).
func RegisterDefault() {
    regOnce.Do(func(){
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(WebhookDeliveries)
        Registry.MustRegister(WebhookLatency)
        Registry.MustRegister(SolveDuration)
        Registry.MustRegister(HeuristicIterationsTotal)
        Registry.MustRegister(HeuristicEnergy)
        Registry.MustRegister(ExactNodesExplored)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
