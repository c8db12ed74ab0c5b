// Command fareexport exports one month of fare records from the fare store to
// per-day CSV files.
//
//	fareexport -year 2021 -month 3
//
// Configuration is read from FAREEXPORT_ environment variables and an
// optional .env file. See package config for the full list.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/faretracker/fareexport/config"
	"github.com/faretracker/fareexport/csvfile"
	"github.com/faretracker/fareexport/dynamodb"
	"github.com/faretracker/fareexport/export"
	"github.com/faretracker/fareexport/logging"
	"github.com/faretracker/fareexport/metrics"
	"github.com/faretracker/fareexport/postgres"
	"github.com/faretracker/fareexport/sqs"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	year := flag.Int("year", 0, "year to export, four digits (overrides FAREEXPORT_YEAR)")
	month := flag.Int("month", 0, "month to export, 1-12 (overrides FAREEXPORT_MONTH)")
	envFile := flag.String("env", ".env", "path to an optional .env file")
	skipSchemaValidation := flag.Bool("skip-schema-validation", false, "do not verify the store schema before exporting")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fareexport: %v\n", err)
		os.Exit(2)
	}

	if *year != 0 {
		cfg.Year = *year
	}

	if *month != 0 {
		cfg.Month = *month
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "fareexport: invalid configuration: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, logging.Format(cfg.LogFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fareexport: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, cfg, logger, *skipSchemaValidation)
	if report != nil {
		printReport(os.Stdout, report)
	}

	if err != nil {
		logger.Errorf("Export failed: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, skipSchemaValidation bool) (*export.Report, error) {
	var awsCfg *aws.Config

	if cfg.Store == config.StoreDynamoDB || cfg.NotifyQueue != "" {
		c, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}

		awsCfg = c
	}

	querier, closeStore, err := openStore(ctx, cfg, awsCfg, skipSchemaValidation)
	if err != nil {
		return nil, err
	}

	defer closeStore()

	writePolicy, _ := csvfile.ParseWritePolicy(cfg.WritePolicy)
	failurePolicy, _ := export.ParseFailurePolicy(cfg.FailurePolicy)

	writer, err := csvfile.New(cfg.OutputDir, csvfile.WithPolicy(writePolicy))
	if err != nil {
		return nil, err
	}

	pricePolicy := export.PriceBestEffort
	if cfg.StrictPrices {
		pricePolicy = export.PriceStrict
	}

	opts := []export.Option{
		export.WithThreshold(cfg.Threshold),
		export.WithFailurePolicy(failurePolicy),
		export.WithPricePolicy(pricePolicy),
		export.WithQueryTimeout(cfg.QueryTimeout),
	}

	if cfg.NotifyQueue != "" {
		notifier, err := sqs.New(awsCfg, cfg.NotifyQueue, logger).Init(ctx)
		if err != nil {
			return nil, err
		}

		opts = append(opts, export.WithNotifier(notifier))
	}

	var registry *prometheus.Registry

	if cfg.MetricsFile != "" {
		registry = prometheus.NewRegistry()

		recorder, err := metrics.New(registry)
		if err != nil {
			return nil, err
		}

		opts = append(opts, export.WithRecorder(recorder))
	}

	pipeline, err := export.New(querier, writer, logger, opts...)
	if err != nil {
		return nil, err
	}

	report, runErr := pipeline.Run(ctx, cfg.Year, time.Month(cfg.Month))

	if registry != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile, registry); err != nil {
			logger.Warnf("Failed to write metrics: %v", err)
		}
	}

	if runErr != nil {
		return report, runErr
	}

	return report, report.Err()
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (*aws.Config, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &awsCfg, nil
}

func openStore(ctx context.Context, cfg *config.Config, awsCfg *aws.Config, skipSchemaValidation bool) (export.Querier, func(), error) {
	switch cfg.Store {
	case config.StoreDynamoDB:
		client := dynamodb.New(awsCfg, cfg.TableName,
			dynamodb.WithPartitionKey(cfg.PartitionKey),
			dynamodb.WithMaxAttempts(cfg.MaxAttempts),
			dynamodb.WithConsistentRead(cfg.ConsistentRead),
			dynamodb.WithFollowPagination(cfg.FollowPagination),
		)

		if err := client.Connect(); err != nil {
			return nil, nil, err
		}

		if err := client.Init(ctx, skipSchemaValidation); err != nil {
			return nil, nil, err
		}

		return client, func() {}, nil
	case config.StorePostgres:
		sslMode, _ := postgres.ParseSSLMode(cfg.PostgresSSLMode)

		client := postgres.New(
			postgres.WithHost(cfg.PostgresHost),
			postgres.WithPort(cfg.PostgresPort),
			postgres.WithUser(cfg.PostgresUser),
			postgres.WithPassword(cfg.PostgresPassword),
			postgres.WithDatabase(cfg.PostgresDatabase),
			postgres.WithSSLMode(sslMode),
			postgres.WithTable(cfg.PostgresTable),
		)

		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}

		closeFn := func() { _ = client.Close(context.Background()) }

		if err := client.Init(ctx, skipSchemaValidation); err != nil {
			closeFn()
			return nil, nil, err
		}

		return client, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("invalid store: %s", cfg.Store)
	}
}

func printReport(w io.Writer, report *export.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "DAY\tSTATUS\tCOUNT\tROWS\tFILE\n")

	for _, day := range report.Days {
		file := day.Path
		if day.Err != nil {
			file = day.Err.Error()
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", day.Key, day.Status, day.Count, day.Rows, file)
	}

	_ = tw.Flush()

	fmt.Fprintf(w, "%d fetched, %d skipped, %d failed\n",
		report.Count(export.StatusFetched), report.Count(export.StatusSkipped), report.Count(export.StatusFailed))
}
