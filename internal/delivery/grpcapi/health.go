package grpcapi

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RatesServiceName is the health service that follows the rate provider probe.
const RatesServiceName = "kiosk.rates"

type HealthHandler struct {
	server *health.Server
}

func NewHealthHandler() *HealthHandler {
	h := &HealthHandler{server: health.NewServer()}
	// Unknown until the first probe finishes.
	h.server.SetServingStatus(RatesServiceName, healthpb.HealthCheckResponse_UNKNOWN)
	return h
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// SetProviderHealthy marks the rates service. The overall service stays up so
// the catalog can still be served when the rate service is down.
func (h *HealthHandler) SetProviderHealthy(_ string, healthy bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if healthy {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus(RatesServiceName, status)
}

func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}
