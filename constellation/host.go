package constellation

import (
	"context"
	"fmt"

	"github.com/constellation-engine/core/component"
	"github.com/constellation-engine/core/dagspec"
	"github.com/constellation-engine/core/discovery"
	"github.com/constellation-engine/core/logger"
)

// EngineHost wires the optional infrastructure components (database, redis,
// kafka, discovery) into a component.Registry, started in registration order
// and stopped in reverse — the same deterministic lifecycle every other
// service in this tree uses. A caller that only needs the in-process engine
// with memory-backed Catalog/Suspend never constructs one.
type EngineHost struct {
	Registry  *component.Registry
	Discovery *discovery.Component

	serviceAddr string
	servicePort int
	log         *logger.Logger
}

// NewEngineHost creates an empty host. Register components with Add before
// calling Start.
func NewEngineHost(serviceAddr string, servicePort int, log *logger.Logger) *EngineHost {
	if log == nil {
		log = logger.NewDefault("constellation.host")
	}
	return &EngineHost{
		Registry:    component.NewRegistry(),
		serviceAddr: serviceAddr,
		servicePort: servicePort,
		log:         log.WithComponent("host"),
	}
}

// Add registers a component. Register dependencies (database, redis) before
// components that use them (kafka consumers reading from a database-backed
// dedup table, for instance).
func (h *EngineHost) Add(c component.Component) error {
	if dc, ok := c.(*discovery.Component); ok {
		h.Discovery = dc
	}
	return h.Registry.Register(c)
}

// Start starts every registered component in registration order.
func (h *EngineHost) Start(ctx context.Context) error {
	return h.Registry.StartAll(ctx)
}

// Stop stops every registered component in reverse registration order.
func (h *EngineHost) Stop(ctx context.Context) error {
	return h.Registry.StopAll(ctx)
}

// Health reports the health of every registered component.
func (h *EngineHost) Health(ctx context.Context) []component.ComponentHealth {
	return h.Registry.HealthAll(ctx)
}

// PublishModules registers d's HTTPConfig.Published module nodes with the
// discovery backend, so external callers can find them the way
// dagspec.HTTPConfig's doc comment anticipates. A no-op if no
// discovery.Component was added.
func (h *EngineHost) PublishModules(ctx context.Context, d *dagspec.DagSpec) error {
	if h.Discovery == nil {
		return nil
	}
	registry := h.Discovery.Registry()
	if registry == nil {
		return nil
	}
	for _, id := range PublishedModules(d) {
		m := d.Modules[id]
		info := &discovery.ServiceInfo{
			ID:      fmt.Sprintf("%s-%s", d.Metadata.Name, id),
			Name:    m.Metadata.Name,
			Address: h.serviceAddr,
			Port:    h.servicePort,
			Tags:    m.Metadata.Tags,
			Metadata: map[string]string{
				"pipeline": d.Metadata.Name,
				"module":   id,
				"version":  fmt.Sprintf("%d.%d", m.Metadata.Major, m.Metadata.Minor),
			},
		}
		if err := registry.Register(ctx, info); err != nil {
			return err
		}
	}
	return nil
}

// UnpublishModules deregisters d's published module nodes.
func (h *EngineHost) UnpublishModules(ctx context.Context, d *dagspec.DagSpec) error {
	if h.Discovery == nil {
		return nil
	}
	registry := h.Discovery.Registry()
	if registry == nil {
		return nil
	}
	for _, id := range PublishedModules(d) {
		serviceID := fmt.Sprintf("%s-%s", d.Metadata.Name, id)
		if err := registry.Deregister(ctx, serviceID); err != nil {
			return err
		}
	}
	return nil
}
