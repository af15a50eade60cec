// Package constellation is the public facade: it wires the typed DAG model
// (dagspec), the execution engine (engine), the suspension subsystem
// (suspend), the pipeline store (store), and the module registry (module)
// behind the run/resume/register surface described by §6. Infrastructure
// lifecycle (database, redis, kafka, discovery) is wired separately by
// EngineHost so a caller that only needs the in-process engine never pays
// for it.
package constellation

import (
	"github.com/constellation-engine/core/config"
	"github.com/constellation-engine/core/engine"
)

// EngineConfig is the facade's top-level configuration, loaded the way every
// service in this tree loads its config: config.LoadConfig against a
// config.yml/.env pair, with ServiceConfig promoted for the name/environment/
// logging fields every deployment needs regardless of domain.
type EngineConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Parallelism bounds concurrent module execution across a single run
	// (engine.Engine.Parallelism). ApplyDefaults replaces 0 with 8, so a
	// loaded config never reaches the engine's "0 means unlimited" case.
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism"`

	// DefaultModuleTimeoutMs is loaded from config but not read by New or
	// the engine; module nodes that don't declare ModuleConfig.ModuleTimeoutMs
	// get no default timeout from it.
	DefaultModuleTimeoutMs int `yaml:"defaultModuleTimeoutMs" mapstructure:"defaultModuleTimeoutMs"`

	// Debug selects the engine's input re-validation aggressiveness
	// (engine.DebugOff/DebugErrorsOnly/DebugFull). Stored as a string in
	// config so it round-trips cleanly through YAML/env.
	Debug string `yaml:"debug" mapstructure:"debug"`

	// SnapshotArchiveThresholdBytes is the encoded-suspension-state size
	// above which a copy of the snapshot is also uploaded to the
	// storage.Storage overflow backend; the snapshot is always saved to the
	// suspend.Store as well (§4.6). 0 disables archiving.
	SnapshotArchiveThresholdBytes int `yaml:"snapshotArchiveThresholdBytes" mapstructure:"snapshotArchiveThresholdBytes"`

	// SuspendBackend selects the suspend.Store implementation: "memory" or
	// "redis". Redis requires a redis.Component wired through EngineHost.
	SuspendBackend string `yaml:"suspendBackend" mapstructure:"suspendBackend"`

	// PipelineStoreBackend selects the store.Store implementation: "memory"
	// or "database". Database requires a database.Component wired through
	// EngineHost.
	PipelineStoreBackend string `yaml:"pipelineStoreBackend" mapstructure:"pipelineStoreBackend"`
}

// ApplyDefaults fills in zero-valued fields, following ServiceConfig's
// override-then-call-super convention.
func (c *EngineConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Parallelism == 0 {
		c.Parallelism = 8
	}
	if c.Debug == "" {
		c.Debug = "off"
	}
	if c.SuspendBackend == "" {
		c.SuspendBackend = "memory"
	}
	if c.PipelineStoreBackend == "" {
		c.PipelineStoreBackend = "memory"
	}
}

// Validate checks the facade-specific fields, then delegates to
// ServiceConfig.Validate for the ambient fields.
func (c *EngineConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	v := newValidator()
	v.OneOf("debug", c.Debug, []string{"off", "errorsOnly", "full"})
	v.OneOf("suspendBackend", c.SuspendBackend, []string{"memory", "redis"})
	v.OneOf("pipelineStoreBackend", c.PipelineStoreBackend, []string{"memory", "database"})
	v.Min("parallelism", c.Parallelism, 0)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// DebugMode translates the config's string Debug field into engine.DebugMode.
func (c *EngineConfig) DebugMode() engine.DebugMode {
	switch c.Debug {
	case "errorsOnly":
		return engine.DebugErrorsOnly
	case "full":
		return engine.DebugFull
	default:
		return engine.DebugOff
	}
}

// LoadConfig loads an EngineConfig for serviceName using the same
// viper+godotenv search/bind convention as every other service config in
// this tree.
func LoadConfig(serviceName string, opts ...config.LoaderOption) (*EngineConfig, error) {
	cfg := &EngineConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
