package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/faretracker/fareexport/types"
)

const (
	// DefaultPartitionKey is the default name of the partition key attribute.
	DefaultPartitionKey = "date"

	// DefaultTimeAttribute is the default name of the record time attribute.
	DefaultTimeAttribute = "time"

	// DefaultPriceAttribute is the default name of the raw price attribute.
	DefaultPriceAttribute = "price"

	keyPlaceholder   = "#key"
	valuePlaceholder = ":pk_value"
)

// Client queries day partitions from a DynamoDB table.
//
// Use [New] to create a Client, [Client.Connect] to initialize the underlying
// DynamoDB connection, and optionally [Client.Init] to validate the table
// schema.
type Client struct {
	client    API
	tableName string
	awsCfg    *aws.Config
	opts      *Options
}

// New creates a new Client configured with the given AWS config, table name,
// and optional options. Call [Client.Connect] on the returned client before use.
func New(awsCfg *aws.Config, tableName string, opts ...Option) *Client {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	return &Client{
		awsCfg:    awsCfg,
		tableName: tableName,
		opts:      options,
	}
}

// Connect initializes the DynamoDB client from the AWS config provided to [New].
// It must be called before any other Client methods.
func (c *Client) Connect() error {
	if c.tableName == "" {
		return errors.New("table name cannot be empty")
	}

	if err := c.opts.validate(); err != nil {
		return fmt.Errorf("invalid DynamoDB options: %w", err)
	}

	// Use injected DynamoDB API if provided (useful for testing).
	if c.opts.dynamoDBAPI != nil {
		c.client = c.opts.dynamoDBAPI
		return nil
	}

	if c.awsCfg == nil {
		return errors.New("AWS config cannot be nil")
	}

	c.client = dynamodb.NewFromConfig(*c.awsCfg, func(o *dynamodb.Options) {
		if c.opts.maxAttempts == 1 {
			o.Retryer = aws.NopRetryer{}
			return
		}

		o.Retryer = retry.AddWithMaxAttempts(o.Retryer, c.opts.maxAttempts)
	})

	return nil
}

// Init validates the DynamoDB table schema. It checks that the table exists,
// is active, and that its partition key is the attribute configured with
// [WithPartitionKey].
//
// Pass skipSchemaValidation true to skip all checks and return immediately,
// which is useful when the caller lacks dynamodb:DescribeTable permission.
func (c *Client) Init(ctx context.Context, skipSchemaValidation bool) error {
	if c.client == nil {
		return errors.New("DynamoDB client not connected")
	}

	if skipSchemaValidation {
		return nil
	}

	input := &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	}

	response, err := c.client.DescribeTable(ctx, input)
	if err != nil {
		var notFoundError *dynamodbtypes.ResourceNotFoundException
		if errors.As(err, &notFoundError) {
			return fmt.Errorf("table %s does not exist", c.tableName)
		}
		return fmt.Errorf("failed to describe table %s: %w", c.tableName, err)
	}

	if response.Table == nil {
		return fmt.Errorf("table %s has no description", c.tableName)
	}

	hashKey := ""

	for _, element := range response.Table.KeySchema {
		if element.KeyType == dynamodbtypes.KeyTypeHash {
			hashKey = aws.ToString(element.AttributeName)
		}
	}

	if hashKey == "" {
		return fmt.Errorf("table %s has no partition key", c.tableName)
	}

	if hashKey != c.opts.partitionKey {
		return fmt.Errorf("table %s has partition key %s, expected %s", c.tableName, hashKey, c.opts.partitionKey)
	}

	if response.Table.TableStatus != dynamodbtypes.TableStatusActive {
		return fmt.Errorf("table %s is not active (status: %s)", c.tableName, response.Table.TableStatus)
	}

	return nil
}

// QueryByKey returns every record stored under the given day partition, in
// the order DynamoDB returned them. Count is the item count DynamoDB reports
// for the query.
//
// Only the first response page is read unless [WithFollowPagination] is
// enabled.
func (c *Client) QueryByKey(ctx context.Context, key types.DayKey) (*types.PartitionQueryResult, error) {
	if c.client == nil {
		return nil, errors.New("DynamoDB client not connected")
	}

	if key == "" {
		return nil, errors.New("day key cannot be empty")
	}

	queryInput := &dynamodb.QueryInput{
		TableName:              &c.tableName,
		KeyConditionExpression: aws.String(fmt.Sprintf("%s = %s", keyPlaceholder, valuePlaceholder)),
		ExpressionAttributeNames: map[string]string{
			keyPlaceholder: c.opts.partitionKey,
		},
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			valuePlaceholder: &dynamodbtypes.AttributeValueMemberS{Value: string(key)},
		},
	}

	if c.opts.consistentRead {
		queryInput.ConsistentRead = aws.Bool(true)
	}

	result := &types.PartitionQueryResult{}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		output, err := c.client.Query(ctx, queryInput)
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB table %s for %s: %w", c.tableName, key, err)
		}

		result.Count += int(output.Count)

		for _, item := range output.Items {
			record, err := c.decodeRecord(item)
			if err != nil {
				return nil, fmt.Errorf("failed to decode item in partition %s: %w", key, err)
			}

			result.Items = append(result.Items, record)
		}

		if !c.opts.followPagination || output.LastEvaluatedKey == nil {
			break
		}

		queryInput.ExclusiveStartKey = output.LastEvaluatedKey
	}

	return result, nil
}

// TableName returns the table name supplied to [New].
func (c *Client) TableName() string {
	return c.tableName
}

func (c *Client) decodeRecord(item map[string]dynamodbtypes.AttributeValue) (types.RawRecord, error) {
	var record types.RawRecord

	if err := decodeStringAttribute(item, c.opts.timeAttribute, &record.Time); err != nil {
		return types.RawRecord{}, err
	}

	if err := decodeStringAttribute(item, c.opts.priceAttribute, &record.Price); err != nil {
		return types.RawRecord{}, err
	}

	return record, nil
}

func decodeStringAttribute(item map[string]dynamodbtypes.AttributeValue, name string, out *string) error {
	attr, ok := item[name]
	if !ok || attr == nil {
		return fmt.Errorf("item is missing attribute %s", name)
	}

	if err := attributevalue.Unmarshal(attr, out); err != nil {
		return fmt.Errorf("failed to unmarshal attribute %s: %w", name, err)
	}

	return nil
}
