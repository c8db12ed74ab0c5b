// Package sqs publishes export notifications to an AWS SQS FIFO queue.
//
// After a day file has been written the export pipeline hands a
// [github.com/faretracker/fareexport/types.DayExport] to
// [Client.NotifyDayExported], which sends it as a JSON message. Messages for
// the same month share a message group, so consumers see the days of a month
// in export order. The deduplication ID combines the day key and the row
// count: re-running an unchanged export inside the SQS deduplication window
// does not notify twice, while a re-export with different content does.
//
// Create a client with [New] and initialise it with [Client.Init]:
//
//	notifier, err := sqs.New(&awsCfg, "fare-exports.fifo", logger,
//	    sqs.WithSqsAPIMaxRetryAttempts(3),
//	).Init(ctx)
//
// Pass the client to the pipeline with export.WithNotifier(notifier).
//
// # Configuration
//
// Functional options are passed to [New] and take effect when [Client.Init]
// is called. See the With* functions for available settings and their
// defaults.
package sqs
