// Package dynamodb queries day partitions of fare records stored in DynamoDB.
//
// # Overview
//
// The table is partitioned by a calendar-day key in YY-MM-DD form. Each
// partition holds one item per minute with a time attribute and a price
// attribute:
//
//	date (partition key) | time  | price
//	23-03-07             | 00:00 | 10,000.00 USD
//	23-03-07             | 00:01 | 9,999.99 USD
//
// Attribute names default to "date", "time" and "price" and can be changed
// with [WithPartitionKey], [WithTimeAttribute] and [WithPriceAttribute].
//
// # Getting Started
//
// Create a [Client] with [New], supplying an AWS config, the table name, and
// any [Option] values you need:
//
//	client := dynamodb.New(&awsCfg, "tracker_db", dynamodb.WithPartitionKey("date"))
//
//	if err := client.Connect(); err != nil {
//	    return err
//	}
//
//	result, err := client.QueryByKey(ctx, "23-03-07")
//
// By default, [Client.Connect] creates an AWS SDK v2 DynamoDB client from the
// supplied [aws.Config]. Supply [WithAPI] to inject a custom or mock
// implementation.
//
// # Retries and Pagination
//
// Store calls are not retried unless [WithMaxAttempts] is set above 1. A
// partition is expected to fit in a single Query response; enable
// [WithFollowPagination] to follow LastEvaluatedKey instead.
//
// # Concurrency
//
// [Client] is safe for concurrent use by multiple goroutines once
// [Client.Connect] has returned.
package dynamodb
