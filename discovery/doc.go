// Package discovery provides service discovery abstractions for pipeline
// hosts.
//
// It defines interfaces and types for dynamically discovering healthy service
// instances from registries such as Consul or static configuration, and
// follows this tree's component pattern with lifecycle management and health
// checks. constellation.EngineHost uses Registry to advertise module nodes
// whose dagspec.HTTPConfig marks them Published, so external callers can
// locate a pipeline's externally-reachable module endpoints without the
// engine itself exposing any transport.
//
// # Architecture
//
//   - Client: Resolves service instances by name with health filtering
//   - Registry: Manages service registration and deregistration
//   - Strategy: Selects an instance from available candidates (e.g., round-robin)
//
// # Backends
//
//   - discovery/consul: HashiCorp Consul service discovery
//   - discovery/static: Static list of endpoints for development/testing
package discovery
