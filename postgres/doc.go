// Package postgres queries day partitions of fare records stored in a
// PostgreSQL table.
//
// It is an alternative to the DynamoDB store for deployments that keep the
// minute records in a relational table:
//
//	CREATE TABLE fares (day_key text NOT NULL, time text NOT NULL, price text NOT NULL);
//
// The table and column names are configurable via [WithTable],
// [WithDayKeyColumn], [WithTimeColumn] and [WithPriceColumn]. The package never
// creates or alters tables; the schema is managed outside this tool.
//
// # Usage
//
// Create a client using [New] with functional options, call [Client.Connect]
// to establish the connection pool, and then [Client.Init] to verify the
// table schema:
//
//	client := postgres.New(
//	    postgres.WithHost("localhost"),
//	    postgres.WithPort(5432),
//	    postgres.WithUser("tracker"),
//	    postgres.WithPassword("secret"),
//	    postgres.WithDatabase("tracker_db"),
//	)
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
//	if err := client.Init(ctx, false); err != nil {
//	    log.Fatal(err)
//	}
//
// # Connection Pool
//
// The underlying pgxpool can be tuned with [WithPoolMaxConnections],
// [WithPoolMinConnections], [WithPoolMaxConnectionLifetime] and
// [WithPoolMaxConnectionIdleTime].
//
// # SSL
//
// SSL behaviour is controlled by [WithSSLMode] using the [SSLMode] constants
// ([SSLModeDisable], [SSLModeAllow], [SSLModePrefer], [SSLModeRequire],
// [SSLModeVerifyCA], [SSLModeVerifyFull]). The default is [SSLModePrefer].
package postgres
