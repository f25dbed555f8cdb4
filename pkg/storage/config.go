package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Supported storage providers.
const (
	ProviderLocal = "local"
	ProviderAzure = "azure"
	ProviderS3    = "s3"
)

// Config selects a blob storage provider and holds its connection parameters.
type Config struct {
	Provider string      `toml:"provider"`
	Local    LocalConfig `toml:"local"`
	Azure    AzureConfig `toml:"azure"`
	S3       S3Config    `toml:"s3"`
}

// LocalConfig stores blobs as files beneath Root.
type LocalConfig struct {
	Root string `toml:"root"`
}

// AzureConfig holds Azure Blob Storage connection parameters.
type AzureConfig struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
}

// S3Config holds S3 (or S3-compatible) connection parameters.
// Empty credentials fall back to the default AWS credential chain.
type S3Config struct {
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider              string
	LocalRoot             string
	AzureContainerName    string
	AzureConnectionString string
	S3Bucket              string
	S3Region              string
	S3Endpoint            string
	S3AccessKeyID         string
	S3SecretAccessKey     string
	S3UsePathStyle        string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Local.Root != "" {
		c.Local.Root = overlay.Local.Root
	}
	if overlay.Azure.ContainerName != "" {
		c.Azure.ContainerName = overlay.Azure.ContainerName
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.S3.Bucket != "" {
		c.S3.Bucket = overlay.S3.Bucket
	}
	if overlay.S3.Region != "" {
		c.S3.Region = overlay.S3.Region
	}
	if overlay.S3.Endpoint != "" {
		c.S3.Endpoint = overlay.S3.Endpoint
	}
	if overlay.S3.AccessKeyID != "" {
		c.S3.AccessKeyID = overlay.S3.AccessKeyID
	}
	if overlay.S3.SecretAccessKey != "" {
		c.S3.SecretAccessKey = overlay.S3.SecretAccessKey
	}
	if overlay.S3.UsePathStyle {
		c.S3.UsePathStyle = true
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.Local.Root == "" {
		c.Local.Root = "uploads"
	}
	if c.Azure.ContainerName == "" {
		c.Azure.ContainerName = "properties"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.LocalRoot, &c.Local.Root)
	set(env.AzureContainerName, &c.Azure.ContainerName)
	set(env.AzureConnectionString, &c.Azure.ConnectionString)
	set(env.S3Bucket, &c.S3.Bucket)
	set(env.S3Region, &c.S3.Region)
	set(env.S3Endpoint, &c.S3.Endpoint)
	set(env.S3AccessKeyID, &c.S3.AccessKeyID)
	set(env.S3SecretAccessKey, &c.S3.SecretAccessKey)

	if env.S3UsePathStyle != "" {
		if v := os.Getenv(env.S3UsePathStyle); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.S3.UsePathStyle = b
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderLocal:
		if c.Local.Root == "" {
			return fmt.Errorf("local.root required")
		}
	case ProviderAzure:
		if c.Azure.ContainerName == "" {
			return fmt.Errorf("azure.container_name required")
		}
		if c.Azure.ConnectionString == "" {
			return fmt.Errorf("azure.connection_string required")
		}
	case ProviderS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket required")
		}
		if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
			return fmt.Errorf("s3.access_key_id and s3.secret_access_key must be set together")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}
