package dynamodb

import (
	"errors"
	"strings"
)

// Option is a functional option for configuring a [Client].
type Option func(*Options)

// Options holds the configuration for a [Client]. Use [Option] functions
// (such as [WithPartitionKey] or [WithFollowPagination]) to customise the
// defaults.
type Options struct {
	partitionKey     string
	timeAttribute    string
	priceAttribute   string
	maxAttempts      int
	consistentRead   bool
	followPagination bool
	dynamoDBAPI      API
}

func newOptions() *Options {
	return &Options{
		partitionKey:   DefaultPartitionKey,
		timeAttribute:  DefaultTimeAttribute,
		priceAttribute: DefaultPriceAttribute,
		maxAttempts:    1,
	}
}

func (o *Options) validate() error {
	if strings.TrimSpace(o.partitionKey) == "" {
		return errors.New("partition key attribute name cannot be empty")
	}

	if strings.TrimSpace(o.timeAttribute) == "" {
		return errors.New("time attribute name cannot be empty")
	}

	if strings.TrimSpace(o.priceAttribute) == "" {
		return errors.New("price attribute name cannot be empty")
	}

	if o.maxAttempts < 1 || o.maxAttempts > 10 {
		return errors.New("max attempts must be between 1 and 10")
	}

	return nil
}

// WithPartitionKey sets the name of the table's partition key attribute.
// The default is "date".
func WithPartitionKey(name string) Option {
	return func(o *Options) {
		o.partitionKey = name
	}
}

// WithTimeAttribute sets the name of the item attribute holding the record
// time. The default is "time".
func WithTimeAttribute(name string) Option {
	return func(o *Options) {
		o.timeAttribute = name
	}
}

// WithPriceAttribute sets the name of the item attribute holding the raw
// price string. The default is "price".
func WithPriceAttribute(name string) Option {
	return func(o *Options) {
		o.priceAttribute = name
	}
}

// WithMaxAttempts sets the number of attempts made for each DynamoDB call.
// The default of 1 disables retries. Must be between 1 and 10.
func WithMaxAttempts(n int) Option {
	return func(o *Options) {
		o.maxAttempts = n
	}
}

// WithConsistentRead enables strongly consistent reads for partition queries.
func WithConsistentRead(enabled bool) Option {
	return func(o *Options) {
		o.consistentRead = enabled
	}
}

// WithFollowPagination makes [Client.QueryByKey] follow LastEvaluatedKey until
// the whole partition has been read. When disabled (the default) only the
// first response page is used.
func WithFollowPagination(enabled bool) Option {
	return func(o *Options) {
		o.followPagination = enabled
	}
}

// WithAPI sets a custom [API] implementation. This is useful when a custom
// DynamoDB configuration is required, or for injecting mocks in tests.
func WithAPI(api API) Option {
	return func(o *Options) {
		o.dynamoDBAPI = api
	}
}
