package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/faretracker/fareexport/types"
)

// Client publishes messages to an SQS FIFO queue.
//
// Create a Client with [New], then call [Client.Init] once before any other
// method. Init is not thread-safe; all other methods are safe for concurrent
// use after Init returns.
type Client struct {
	client      sqsClient
	queueName   string
	queueURL    string
	awsCfg      *aws.Config
	opts        *Options
	logger      types.Logger
	initialized bool
}

// New creates a Client configured to publish to the named SQS FIFO queue.
// The queue name must end with ".fifo"; this constraint is enforced by
// [Client.Init].
//
// The logger is automatically enriched with "component" and "queue_name" fields.
//
// New does not connect to AWS. Call [Client.Init] to resolve the queue URL.
func New(awsCfg *aws.Config, queueName string, logger types.Logger, opts ...Option) *Client {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	logger = logger.
		WithField("component", "sqs").
		WithField("queue_name", queueName)

	return &Client{
		awsCfg:    awsCfg,
		queueName: queueName,
		opts:      options,
		logger:    logger,
	}
}

// Init validates options and resolves the queue URL via GetQueueUrl.
// It returns the receiver so that initialization can be chained with [New]:
//
//	client, err := sqs.New(&awsCfg, "fare-exports.fifo", logger).Init(ctx)
//
// Init is idempotent. Subsequent calls on an already-initialized Client are
// no-ops.
func (c *Client) Init(ctx context.Context) (*Client, error) {
	if c.initialized {
		return c, nil
	}

	if !strings.HasSuffix(c.queueName, ".fifo") {
		return nil, errors.New("the SQS queue must be a FIFO queue (the name must end with .fifo)")
	}

	if err := c.opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid SQS options: %w", err)
	}

	// Use injected client if provided (for testing), otherwise create real client
	if c.opts.sqsClient != nil {
		c.client = c.opts.sqsClient
	} else {
		c.client = sqs.NewFromConfig(*c.awsCfg, func(o *sqs.Options) {
			o.Retryer = retry.AddWithMaxBackoffDelay(o.Retryer, c.opts.sqsAPIMaxRetryBackoffDelay)
			o.Retryer = retry.AddWithMaxAttempts(o.Retryer, c.opts.sqsAPIMaxRetryAttempts)
		})
	}

	resp, err := c.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(c.queueName)})
	if err != nil {
		return nil, fmt.Errorf("failed to get SQS queue URL for %s: %w", c.queueName, err)
	}

	c.queueURL = aws.ToString(resp.QueueUrl)
	c.initialized = true

	return c, nil
}

// Send publishes a single message to the FIFO queue.
//
// groupID is used as the SQS MessageGroupId and dedupID as the
// MessageDeduplicationId. SQS silently discards messages with a duplicate ID
// within the 5-minute deduplication window. All arguments must be non-empty.
func (c *Client) Send(ctx context.Context, groupID, dedupID, body string) error {
	if !c.initialized {
		return errors.New("SQS client not initialized")
	}

	if groupID == "" {
		return errors.New("groupID cannot be empty")
	}

	if dedupID == "" {
		return errors.New("dedupID cannot be empty")
	}

	if body == "" {
		return errors.New("body cannot be empty")
	}

	input := &sqs.SendMessageInput{
		QueueUrl:               &c.queueURL,
		MessageGroupId:         &groupID,
		MessageDeduplicationId: &dedupID,
		MessageBody:            &body,
	}

	if _, err := c.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send SQS message: %w", err)
	}

	return nil
}

// NotifyDayExported publishes the export as a JSON message. The message group
// is the YY-MM month prefix of the day key and the deduplication ID is
// "{key}#{rows}".
func (c *Client) NotifyDayExported(ctx context.Context, export types.DayExport) error {
	body, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to marshal export notification for %s: %w", export.Key, err)
	}

	dedupID := fmt.Sprintf("%s#%d", export.Key, export.Rows)

	if err := c.Send(ctx, monthGroup(export.Key), dedupID, string(body)); err != nil {
		return err
	}

	c.logger.WithField("day_key", export.Key.String()).WithField("rows", export.Rows).Debug("Export notification sent")

	return nil
}

// Name returns the SQS queue name supplied to [New].
func (c *Client) Name() string {
	return c.queueName
}

func monthGroup(key types.DayKey) string {
	s := string(key)

	if i := strings.LastIndex(s, "-"); i > 0 {
		return s[:i]
	}

	return s
}
