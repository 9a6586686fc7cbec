package matrix

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCatalog implements Catalog backed by DynamoDB. Conditional writes
// give Publish the compare-and-swap semantics blob storage lacks, so
// multiple publishers can coordinate without losing versions.
//
// Table schema:
//   - Partition key: name (string) - the logical snapshot name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name geodist-snapshots \
//	  --attribute-definitions AttributeName=name,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=name,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCatalog struct {
	client    DDBClient
	tableName string
}

// NewDDBCatalog creates a DynamoDB-backed catalog over the given table.
func NewDDBCatalog(client DDBClient, tableName string) *DDBCatalog {
	return &DDBCatalog{
		client:    client,
		tableName: tableName,
	}
}

// Publish implements Catalog.
func (c *DDBCatalog) Publish(ctx context.Context, entry Entry) (uint64, error) {
	latest, err := c.Latest(ctx, entry.Name)
	if err != nil && !errors.Is(err, ErrSnapshotNotFound) {
		return 0, err
	}

	entry.Version = latest.Version + 1

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	// Conditional put: only succeed if this version doesn't exist yet
	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"name":       &types.AttributeValueMemberS{Value: entry.Name},
			"version":    &types.AttributeValueMemberN{Value: strconv.FormatUint(entry.Version, 10)},
			"key":        &types.AttributeValueMemberS{Value: entry.Key},
			"formula":    &types.AttributeValueMemberS{Value: entry.Formula},
			"count":      &types.AttributeValueMemberN{Value: strconv.Itoa(entry.Count)},
			"created_at": &types.AttributeValueMemberS{Value: entry.CreatedAt.Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrVersionConflict
		}
		return 0, fmt.Errorf("failed to publish to DynamoDB: %w", err)
	}

	return entry.Version, nil
}

// Latest implements Catalog.
func (c *DDBCatalog) Latest(ctx context.Context, name string) (Entry, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("#name = :name"),
		ExpressionAttributeNames: map[string]string{
			"#name": "name", // reserved word in DynamoDB
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: name},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return Entry{}, ErrSnapshotNotFound
	}

	return entryFromItem(name, resp.Items[0])
}

// Versions implements Catalog.
func (c *DDBCatalog) Versions(ctx context.Context, name string) ([]Entry, error) {
	var entries []Entry

	var startKey map[string]types.AttributeValue

	for {
		resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.tableName),
			KeyConditionExpression: aws.String("#name = :name"),
			ExpressionAttributeNames: map[string]string{
				"#name": "name",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":name": &types.AttributeValueMemberS{Value: name},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}

		for _, item := range resp.Items {
			entry, err := entryFromItem(name, item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}

		if resp.LastEvaluatedKey == nil {
			break
		}
		startKey = resp.LastEvaluatedKey
	}

	if len(entries) == 0 {
		return nil, ErrSnapshotNotFound
	}

	return entries, nil
}

func entryFromItem(name string, item map[string]types.AttributeValue) (Entry, error) {
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Entry{}, errors.New("invalid version attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to parse version: %w", err)
	}

	entry := Entry{
		Name:    name,
		Version: version,
	}

	if attr, ok := item["key"].(*types.AttributeValueMemberS); ok {
		entry.Key = attr.Value
	}
	if attr, ok := item["formula"].(*types.AttributeValueMemberS); ok {
		entry.Formula = attr.Value
	}
	if attr, ok := item["count"].(*types.AttributeValueMemberN); ok {
		entry.Count, _ = strconv.Atoi(attr.Value)
	}
	if attr, ok := item["created_at"].(*types.AttributeValueMemberS); ok {
		entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, attr.Value)
	}

	return entry, nil
}
