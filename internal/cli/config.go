package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/wikiflow"
	"github.com/hupe1980/wikiflow/blobstore"
	miniostore "github.com/hupe1980/wikiflow/blobstore/minio"
	s3store "github.com/hupe1980/wikiflow/blobstore/s3"
	"github.com/hupe1980/wikiflow/codec"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"
)

// Config is the wikiflow configuration file.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Partition PartitionConfig `yaml:"partition"`
	Engine    EngineConfig    `yaml:"engine"`
	Limits    LimitsConfig    `yaml:"limits"`
	Log       LogConfig       `yaml:"log"`
}

// StoreConfig selects the blob store holding partitions.
type StoreConfig struct {
	// Backend is one of "local", "memory", "minio" or "s3".
	Backend   string `yaml:"backend"`
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
	// BlockCache is the read cache size, e.g. "256MiB". Empty disables it.
	BlockCache string `yaml:"block_cache"`
	// CatalogTable names a DynamoDB table that records committed
	// partitions of a minio or s3 store.
	CatalogTable string `yaml:"catalog_table"`
}

// PartitionConfig configures partition blobs.
type PartitionConfig struct {
	Prefix      string `yaml:"prefix"`
	Compression string `yaml:"compression"`
}

// EngineConfig selects the evaluator.
type EngineConfig struct {
	// Buckets > 0 selects the cluster engine.
	Buckets     int `yaml:"buckets"`
	Parallelism int `yaml:"parallelism"`
}

// LimitsConfig bounds resource usage. Sizes accept units ("8GiB").
type LimitsConfig struct {
	Memory             string `yaml:"memory"`
	IOPerSecond        string `yaml:"io_per_second"`
	MaxConcurrentLoads int64  `yaml:"max_concurrent_loads"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() Config {
	return Config{
		Store:     StoreConfig{Backend: "local", Dir: "./partitions"},
		Partition: PartitionConfig{Compression: "zstd"},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads path over the defaults and applies WIKIFLOW_*
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WIKIFLOW_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("WIKIFLOW_STORE_DIR"); v != "" {
		cfg.Store.Dir = v
	}
	if v := os.Getenv("WIKIFLOW_STORE_BUCKET"); v != "" {
		cfg.Store.Bucket = v
	}
	if v := os.Getenv("WIKIFLOW_STORE_ENDPOINT"); v != "" {
		cfg.Store.Endpoint = v
	}
	if v := os.Getenv("WIKIFLOW_STORE_ACCESS_KEY"); v != "" {
		cfg.Store.AccessKey = v
	}
	if v := os.Getenv("WIKIFLOW_STORE_SECRET_KEY"); v != "" {
		cfg.Store.SecretKey = v
	}
	if v := os.Getenv("WIKIFLOW_STORE_CATALOG_TABLE"); v != "" {
		cfg.Store.CatalogTable = v
	}
	if v := os.Getenv("WIKIFLOW_COMPRESSION"); v != "" {
		cfg.Partition.Compression = v
	}
	if v := os.Getenv("WIKIFLOW_PARALLELISM"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Parallelism = i
		}
	}
	if v := os.Getenv("WIKIFLOW_BUCKETS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Buckets = i
		}
	}
	if v := os.Getenv("WIKIFLOW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "local":
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the local backend")
		}
	case "memory":
	case "minio", "s3":
		if c.Store.Bucket == "" {
			return fmt.Errorf("store.bucket is required for the %s backend", c.Store.Backend)
		}
		if c.Store.Backend == "minio" && c.Store.Endpoint == "" {
			return fmt.Errorf("store.endpoint is required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.CatalogTable != "" && c.Store.Backend != "minio" && c.Store.Backend != "s3" {
		return fmt.Errorf("store.catalog_table requires the minio or s3 backend")
	}
	if _, ok := codec.ByName(c.Partition.Compression); !ok {
		return fmt.Errorf("unknown compression %q", c.Partition.Compression)
	}
	for name, v := range map[string]string{
		"store.block_cache":    c.Store.BlockCache,
		"limits.memory":        c.Limits.Memory,
		"limits.io_per_second": c.Limits.IOPerSecond,
	} {
		if _, err := parseSize(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func parseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// Logger builds the logger described by c.
func (c Config) Logger(verbose bool) *wikiflow.Logger {
	level, _ := parseLevel(c.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}
	if c.Log.Format == "json" {
		return wikiflow.NewJSONLogger(level)
	}
	return wikiflow.NewTextLogger(level)
}

// OpenStore opens the configured remote or memory blob store. It returns
// nil for the local backend, which Options handles.
func (c Config) OpenStore(ctx context.Context) (blobstore.BlobStore, error) {
	store, err := c.openBackend(ctx)
	if err != nil || store == nil || c.Store.CatalogTable == "" {
		return store, err
	}
	scope := c.Store.Backend + "://" + c.Store.Bucket + "/" + strings.Trim(c.Store.Prefix, "/")
	return s3store.NewCatalog(ctx, store, c.Store.CatalogTable, scope, s3store.WithRegion(c.Store.Region))
}

func (c Config) openBackend(ctx context.Context) (blobstore.BlobStore, error) {
	switch c.Store.Backend {
	case "minio":
		client, err := minio.New(c.Store.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.Store.AccessKey, c.Store.SecretKey, ""),
			Secure: c.Store.Secure,
			Region: c.Store.Region,
		})
		if err != nil {
			return nil, err
		}
		return miniostore.NewStore(client, c.Store.Bucket, c.Store.Prefix), nil
	case "s3":
		var opts []s3store.Option
		if c.Store.Prefix != "" {
			opts = append(opts, s3store.WithPrefix(c.Store.Prefix))
		}
		if c.Store.Region != "" {
			opts = append(opts, s3store.WithRegion(c.Store.Region))
		}
		if c.Store.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(c.Store.Endpoint))
		}
		return s3store.New(ctx, c.Store.Bucket, opts...)
	case "memory":
		return blobstore.NewMemoryStore(), nil
	default:
		return nil, nil
	}
}

// Options translates c into Open options.
func (c Config) Options(ctx context.Context, verbose bool) ([]wikiflow.Option, error) {
	compression, _ := codec.ByName(c.Partition.Compression)
	blockCache, _ := parseSize(c.Store.BlockCache)
	memory, _ := parseSize(c.Limits.Memory)
	ioLimit, _ := parseSize(c.Limits.IOPerSecond)

	opts := []wikiflow.Option{
		wikiflow.WithLogger(c.Logger(verbose)),
		wikiflow.WithPartitionPrefix(c.Partition.Prefix),
		wikiflow.WithCompression(compression),
		wikiflow.WithCluster(c.Engine.Buckets),
		wikiflow.WithParallelism(c.Engine.Parallelism),
		wikiflow.WithBlockCache(blockCache),
		wikiflow.WithMemoryLimit(memory),
		wikiflow.WithIOLimit(ioLimit),
		wikiflow.WithMaxConcurrentLoads(c.Limits.MaxConcurrentLoads),
	}

	if c.Store.Backend == "local" {
		return append(opts, wikiflow.Local(c.Store.Dir)), nil
	}
	store, err := c.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	return append(opts, wikiflow.Remote(store)), nil
}
