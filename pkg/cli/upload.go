package cli

import (
	"context"
	"fmt"

	"github.com/docpipe/doc-upload/internal/config"
	"github.com/docpipe/doc-upload/internal/docsource"
	"github.com/docpipe/doc-upload/internal/journal"
	"github.com/docpipe/doc-upload/internal/logger"
	"github.com/docpipe/doc-upload/internal/notify"
	"github.com/docpipe/doc-upload/internal/progress"
	"github.com/docpipe/doc-upload/internal/storage"
	"github.com/docpipe/doc-upload/internal/uploader"
	"github.com/docpipe/doc-upload/internal/worker"
	"github.com/spf13/cobra"
)

func newUploadCommand(ctx context.Context, cfg *config.Config) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "upload [flags] <file> | <folder> | <archive.zip> ...",
		Short: "Upload documents and notify the backend",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return mergeFileConfig(cmd, cfg, configFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), cfg, args)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a config file")

	// Storage connection flags
	cmd.Flags().StringVar(&cfg.Storage.Endpoint, "endpoint", "", "Storage endpoint URL")
	cmd.Flags().StringVar(&cfg.Storage.Region, "region", cfg.Storage.Region, "Storage region")
	cmd.Flags().StringVar(&cfg.Storage.Bucket, "bucket", cfg.Storage.Bucket, "Storage bucket name")
	cmd.Flags().StringVar(&cfg.Storage.AccessKey, "access-key", "", "Storage access key")
	cmd.Flags().StringVar(&cfg.Storage.SecretKey, "secret-key", "", "Storage secret key")
	cmd.Flags().BoolVar(&cfg.Storage.UseSSL, "use-ssl", cfg.Storage.UseSSL, "Use SSL for the storage connection")
	cmd.Flags().StringVar(&cfg.Storage.Prefix, "prefix", "", "Prefix for object keys")

	// Callback flags
	cmd.Flags().StringVar(&cfg.Callback.URL, "callback-url", cfg.Callback.URL, "Backend callback endpoint")
	cmd.Flags().StringVar(&cfg.Callback.OrgID, "org-id", cfg.Callback.OrgID, "Organization id attached to uploads")
	cmd.Flags().StringVar(&cfg.Callback.UploaderID, "uploader-id", cfg.Callback.UploaderID, "Uploader id attached to uploads")

	// Upload options
	cmd.Flags().IntVar(&cfg.Upload.Concurrency, "concurrency", cfg.Upload.Concurrency, "Number of concurrent uploads")
	cmd.Flags().BoolVar(&cfg.Upload.DryRun, "dry-run", false, "Simulate upload without touching storage or the backend")
	cmd.Flags().BoolVar(&cfg.Upload.Resume, "resume", cfg.Upload.Resume, "Resume a previous batch if interrupted")
	cmd.Flags().StringVar(&cfg.Upload.JournalPath, "journal", "", "Path to journal file for resumable uploads")
	cmd.Flags().BoolVar(&cfg.Upload.SkipExisting, "skip-existing", cfg.Upload.SkipExisting, "Skip documents recorded as already uploaded")
	cmd.Flags().BoolVar(&cfg.Upload.UniqueNames, "unique-names", false, "Name objects with a UUID instead of a timestamp")
	cmd.Flags().IntVar(&cfg.Upload.Retries, "retries", cfg.Upload.Retries, "Retries for transient storage errors (0 disables)")

	// Endpoint and credentials may come from flags, config file or env;
	// storage.New rejects a configuration that still lacks them.

	return cmd
}

// mergeFileConfig overlays config-file and environment values onto cfg for
// every setting whose flag was not given explicitly. Flags are parsed before
// PreRunE runs, so an unchanged flag still holds the default and can be
// safely replaced.
func mergeFileConfig(cmd *cobra.Command, cfg *config.Config, configFile string) error {
	fileCfg := config.New()
	if err := config.LoadFile(fileCfg, configFile); err != nil {
		return err
	}

	merge := func(flag string, apply func()) {
		if !cmd.Flags().Changed(flag) {
			apply()
		}
	}

	if !cmd.InheritedFlags().Changed("log-level") {
		cfg.LogLevel = fileCfg.LogLevel
	}

	merge("endpoint", func() { cfg.Storage.Endpoint = fileCfg.Storage.Endpoint })
	merge("region", func() { cfg.Storage.Region = fileCfg.Storage.Region })
	merge("bucket", func() { cfg.Storage.Bucket = fileCfg.Storage.Bucket })
	merge("access-key", func() { cfg.Storage.AccessKey = fileCfg.Storage.AccessKey })
	merge("secret-key", func() { cfg.Storage.SecretKey = fileCfg.Storage.SecretKey })
	merge("use-ssl", func() { cfg.Storage.UseSSL = fileCfg.Storage.UseSSL })
	merge("prefix", func() { cfg.Storage.Prefix = fileCfg.Storage.Prefix })

	merge("callback-url", func() { cfg.Callback.URL = fileCfg.Callback.URL })
	merge("org-id", func() { cfg.Callback.OrgID = fileCfg.Callback.OrgID })
	merge("uploader-id", func() { cfg.Callback.UploaderID = fileCfg.Callback.UploaderID })

	merge("concurrency", func() { cfg.Upload.Concurrency = fileCfg.Upload.Concurrency })
	merge("dry-run", func() { cfg.Upload.DryRun = fileCfg.Upload.DryRun })
	merge("resume", func() { cfg.Upload.Resume = fileCfg.Upload.Resume })
	merge("journal", func() { cfg.Upload.JournalPath = fileCfg.Upload.JournalPath })
	merge("skip-existing", func() { cfg.Upload.SkipExisting = fileCfg.Upload.SkipExisting })
	merge("unique-names", func() { cfg.Upload.UniqueNames = fileCfg.Upload.UniqueNames })
	merge("retries", func() { cfg.Upload.Retries = fileCfg.Upload.Retries })

	return nil
}

func runUpload(ctx context.Context, cfg *config.Config, args []string) error {
	logger.SetLevel(cfg.LogLevel)

	// A dry run never touches storage, so don't require a reachable bucket
	var store storage.Store
	if !cfg.Upload.DryRun {
		client, err := storage.New(ctx, storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Prefix:    cfg.Storage.Prefix,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize storage client: %w", err)
		}
		store = client
	}

	notifier := notify.New(cfg.Callback.URL, nil)

	jnl := journal.New(cfg.Upload.JournalPath)
	if cfg.Upload.Resume {
		if err := jnl.Load(); err != nil {
			logger.Warn("Could not load journal: %v", err)
		}
	}

	pool := worker.NewPool(cfg.Upload.Concurrency)
	progressReporter := progress.New()

	for _, path := range args {
		source, err := docsource.New(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to open source %s: %w", path, err)
		}

		up := uploader.New(ctx, store, source, notifier, jnl, pool, progressReporter, cfg)
		err = up.Run()
		source.Close()
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
	}

	return nil
}
