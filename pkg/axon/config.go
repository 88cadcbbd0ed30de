package axon

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SchedulerVariant selects the C10 scheduling strategy (spec.md §6
// "scheduler-variant").
type SchedulerVariant string

const (
	SchedulerBlocking    SchedulerVariant = "blocking"
	SchedulerNonBlocking SchedulerVariant = "non_blocking"
)

// Config holds every Framework construction knob from spec.md §6's
// configuration table. Field names carry yaml tags so a deployment can
// ship a Framework's tuning as a config file, the way the teacher's
// Verticle/server configuration is loaded (adapted here for a library
// with no HTTP surface of its own).
type Config struct {
	WorkerCount      int              `yaml:"worker-count"`
	SchedulerVariant SchedulerVariant `yaml:"scheduler-variant"`
	YieldStrategy    YieldPolicy      `yaml:"-"`
	YieldStrategyStr string           `yaml:"yield-strategy"`
	MaxActors        uint32           `yaml:"max-actors"`
	MaxReceivers     uint32           `yaml:"max-receivers"`
	IdentityScheme   IdentityScheme   `yaml:"-"`
	IdentitySchemeStr string          `yaml:"identity-scheme"`
}

// DefaultConfig returns the configuration used when a caller supplies
// none: a modest fixed worker pool, the blocking scheduler variant
// (spec.md §9 calls this "the safer default — no CPU burned on an idle
// system"), and the implicit (reflect-based) identity scheme.
func DefaultConfig() Config {
	return Config{
		WorkerCount:       4,
		SchedulerVariant:  SchedulerBlocking,
		YieldStrategy:     YieldPolite,
		MaxActors:         4096,
		MaxReceivers:      256,
		IdentityScheme:    IdentityImplicit,
	}
}

// LoadConfigFile reads and parses a YAML configuration file, applying
// its values over DefaultConfig for any field left unset.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return LoadConfig(data)
}

// LoadConfig parses YAML-encoded configuration data over DefaultConfig.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	cfg.resolveStringFields()
	return cfg, nil
}

// resolveStringFields translates the YAML-friendly string fields
// (yield-strategy, identity-scheme) into their typed equivalents. Only
// LoadConfig calls it; a Config built directly via DefaultConfig or a
// struct literal keeps its typed fields as set.
func (c *Config) resolveStringFields() {
	switch c.YieldStrategyStr {
	case "strong":
		c.YieldStrategy = YieldStrong
	case "aggressive":
		c.YieldStrategy = YieldAggressive
	case "polite", "":
		c.YieldStrategy = YieldPolite
	}
	switch c.IdentitySchemeStr {
	case "explicit":
		c.IdentityScheme = IdentityExplicit
	case "implicit", "":
		c.IdentityScheme = IdentityImplicit
	}
}

// Validate checks the configuration against the invariants spec.md §6
// implies (positive counts, a recognized scheduler variant), returning a
// descriptive error rather than panicking — malformed configuration is a
// caller mistake discoverable at construction time, not a programming
// invariant violation internal to the runtime.
func (c Config) Validate() error {
	if c.WorkerCount <= 0 {
		return &InvariantError{Invariant: "config-worker-count", Detail: "worker-count must be positive"}
	}
	if c.MaxActors == 0 {
		return &InvariantError{Invariant: "config-max-actors", Detail: "max-actors must be positive"}
	}
	if c.MaxReceivers == 0 {
		return &InvariantError{Invariant: "config-max-receivers", Detail: "max-receivers must be positive"}
	}
	switch c.SchedulerVariant {
	case SchedulerBlocking, SchedulerNonBlocking:
	default:
		return &InvariantError{Invariant: "config-scheduler-variant", Detail: "scheduler-variant must be \"blocking\" or \"non_blocking\""}
	}
	return nil
}
