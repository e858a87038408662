package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"call-analytics-go/internal/backfill"
	"call-analytics-go/internal/catalog"
	"call-analytics-go/internal/config"
	"call-analytics-go/internal/logger"
	"call-analytics-go/internal/source"
	"call-analytics-go/internal/transcription"
	"call-analytics-go/internal/types"
	"call-analytics-go/internal/writer"
)

var (
	rootCmd = &cobra.Command{
		Use:   "backfill",
		Short: "Replay a DynamoDB table into the partitioned analytics bucket",
		RunE:  cmdRun,
	}

	runCfg struct {
		Table    string
		Kind     string
		Workers  int
		PageSize int32
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&runCfg.Table, "table", "", "source DynamoDB table to scan")
	flags.StringVar(&runCfg.Kind, "kind", "", "record kind (calls or scorecards); defaults to the configured source mapping")
	flags.IntVar(&runCfg.Workers, "workers", 0, "enrichment workers for calls (default BACKFILL_WORKERS)")
	flags.Int32Var(&runCfg.PageSize, "page-size", 0, "scan page size (0 lets DynamoDB decide)")
	_ = rootCmd.MarkFlagRequired("table")
}

// resolveKind picks the destination table from --kind or, when absent, from
// the configured source table names.
func resolveKind(cfg config.Config, table, kind string) (types.Table, error) {
	if kind != "" {
		t, ok := types.ParseTable(kind)
		if !ok {
			return types.TableUnknown, fmt.Errorf("unknown kind %q", kind)
		}
		return t, nil
	}
	if t, ok := cfg.Resolve(table); ok {
		return t, nil
	}
	return types.TableUnknown, fmt.Errorf("table %q is not a configured source table; pass --kind", table)
}

func cmdRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	table, err := resolveKind(cfg, runCfg.Table, runCfg.Kind)
	if err != nil {
		return err
	}
	if err := cfg.Validate(table == types.TableCalls); err != nil {
		return err
	}
	workers := runCfg.Workers
	if workers <= 0 {
		workers = cfg.BackfillWorkers
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)
	runLog := log.WithInvocation("").WithField("service", "backfill")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	w := writer.New(s3.NewFromConfig(awsCfg), catalog.NewGlue(glue.NewFromConfig(awsCfg), cfg.GlueDatabase), writer.Options{
		Bucket: cfg.AnalyticsBucket,
		Backoff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = cfg.WriteRetryMax
			return bo
		},
	}, runLog)

	driver := backfill.New(source.NewScanner(dynamodb.NewFromConfig(awsCfg), runCfg.PageSize), w, backfill.Options{
		Workers:   workers,
		Enrichers: enrichers(cfg, awsCfg, runLog),
		TableName: cfg.TableName,
	}, runLog)

	runLog.WithField("workers", workers).Info("starting backfill")
	sum, err := driver.Run(ctx, runCfg.Table, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pages=%d processed=%d with_duration=%d skipped=%d\n",
		sum.Pages, sum.Processed, sum.WithDuration, sum.Skipped)
	return nil
}

// enrichers gives every worker its own S3 client.
func enrichers(cfg config.Config, awsCfg aws.Config, log *logrus.Entry) backfill.EnricherFactory {
	return func(worker int) (transcription.Enricher, error) {
		return transcription.New(s3.NewFromConfig(awsCfg), transcription.Options{
			Bucket:  cfg.TranscribeBucket,
			Prefix:  cfg.TranscriptPrefix,
			Suffix:  cfg.TranscriptSuffix,
			Timeout: cfg.EnrichTimeout,
		}, log.WithField("worker", worker)), nil
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
