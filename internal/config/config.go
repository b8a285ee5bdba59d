package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	LogLevel string
	Storage  StorageConfig
	Callback CallbackConfig
	Upload   UploadConfig
}

// StorageConfig represents object-store connection configuration
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// CallbackConfig represents backend callback configuration
type CallbackConfig struct {
	URL        string
	OrgID      string
	UploaderID string
}

// UploadConfig represents upload behavior configuration
type UploadConfig struct {
	Concurrency  int
	DryRun       bool
	Resume       bool
	JournalPath  string
	SkipExisting bool
	UniqueNames  bool
	Retries      int
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Region: "us-east-1",
			Bucket: "documents",
			UseSSL: true,
		},
		Callback: CallbackConfig{
			URL:        "http://localhost:8000/api/upload/upload-callback",
			OrgID:      "TEMP_ORG",
			UploaderID: "TEMP_USER",
		},
		Upload: UploadConfig{
			Concurrency:  4,
			Resume:       true,
			SkipExisting: true,
			Retries:      0,
		},
	}
}

// LoadFile overlays a config file and DOC_UPLOAD_* environment variables
// onto cfg. Only keys present in the file or environment are applied, so
// the caller decides precedence by choosing which fields to merge back.
func LoadFile(cfg *Config, path string) error {
	v := viper.New()

	v.SetEnvPrefix("DOC_UPLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	apply := func(key string, target func()) {
		if v.IsSet(key) {
			target()
		}
	}

	apply("log_level", func() { cfg.LogLevel = v.GetString("log_level") })

	apply("storage.endpoint", func() { cfg.Storage.Endpoint = v.GetString("storage.endpoint") })
	apply("storage.region", func() { cfg.Storage.Region = v.GetString("storage.region") })
	apply("storage.bucket", func() { cfg.Storage.Bucket = v.GetString("storage.bucket") })
	apply("storage.access_key", func() { cfg.Storage.AccessKey = v.GetString("storage.access_key") })
	apply("storage.secret_key", func() { cfg.Storage.SecretKey = v.GetString("storage.secret_key") })
	apply("storage.use_ssl", func() { cfg.Storage.UseSSL = v.GetBool("storage.use_ssl") })
	apply("storage.prefix", func() { cfg.Storage.Prefix = v.GetString("storage.prefix") })

	apply("callback.url", func() { cfg.Callback.URL = v.GetString("callback.url") })
	apply("callback.org_id", func() { cfg.Callback.OrgID = v.GetString("callback.org_id") })
	apply("callback.uploader_id", func() { cfg.Callback.UploaderID = v.GetString("callback.uploader_id") })

	apply("upload.concurrency", func() { cfg.Upload.Concurrency = v.GetInt("upload.concurrency") })
	apply("upload.dry_run", func() { cfg.Upload.DryRun = v.GetBool("upload.dry_run") })
	apply("upload.resume", func() { cfg.Upload.Resume = v.GetBool("upload.resume") })
	apply("upload.journal", func() { cfg.Upload.JournalPath = v.GetString("upload.journal") })
	apply("upload.skip_existing", func() { cfg.Upload.SkipExisting = v.GetBool("upload.skip_existing") })
	apply("upload.unique_names", func() { cfg.Upload.UniqueNames = v.GetBool("upload.unique_names") })
	apply("upload.retries", func() { cfg.Upload.Retries = v.GetInt("upload.retries") })

	return nil
}
