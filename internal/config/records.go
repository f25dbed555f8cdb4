package config

import "fmt"

// Record store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

const EnvRecordsDriver = "ESTATE_RECORDS_DRIVER"

// RecordsConfig selects the property record store.
type RecordsConfig struct {
	Driver string `toml:"driver"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RecordsConfig) Finalize() error {
	if c.Driver == "" {
		c.Driver = DriverPostgres
	}
	envString(EnvRecordsDriver, &c.Driver)

	switch c.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
		return nil
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *RecordsConfig) Merge(overlay *RecordsConfig) {
	mergeString(&c.Driver, overlay.Driver)
}
