package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"

	"call-analytics-go/internal/catalog"
	"call-analytics-go/internal/config"
	"call-analytics-go/internal/logger"
	"call-analytics-go/internal/stream"
	"call-analytics-go/internal/transcription"
	"call-analytics-go/internal/writer"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)
	log = &logger.Logger{Entry: log.WithField("service", "stream-processor")}
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if err := cfg.ValidateStream(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.WithError(err).Fatal("failed to load aws config")
	}

	s3Client := s3.NewFromConfig(awsCfg)
	registrar := catalog.NewGlue(glue.NewFromConfig(awsCfg), cfg.GlueDatabase)
	w := writer.New(s3Client, registrar, writer.Options{
		Bucket: cfg.AnalyticsBucket,
		Backoff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = cfg.WriteRetryMax
			return bo
		},
	}, log)
	enricher := transcription.New(s3Client, transcription.Options{
		Bucket:  cfg.TranscribeBucket,
		Prefix:  cfg.TranscriptPrefix,
		Suffix:  cfg.TranscriptSuffix,
		Timeout: cfg.EnrichTimeout,
	}, log)

	handler := stream.NewHandler(stream.NewProcessor(cfg, w, enricher), log)
	log.WithFields(map[string]interface{}{
		"bucket":            cfg.AnalyticsBucket,
		"glue_database":     cfg.GlueDatabase,
		"calls_source":      cfg.CallsSourceTable,
		"scorecards_source": cfg.ScorecardsSourceTable,
	}).Info("starting stream processor")
	lambda.Start(handler.Handle)
}
