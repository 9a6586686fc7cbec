package matrix

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // name:version -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := params.Item["name"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := name + ":" + version

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item

	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := params.ExpressionAttributeValues[":name"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue

	for _, item := range m.items {
		if item["name"].(*types.AttributeValueMemberS).Value == name {
			items = append(items, item)
		}
	}

	version := func(item map[string]types.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}

	descending := params.ScanIndexForward != nil && !*params.ScanIndexForward

	sort.Slice(items, func(i, j int) bool {
		if descending {
			return version(items[i]) > version(items[j])
		}
		return version(items[i]) < version(items[j])
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func catalogs(t *testing.T) map[string]Catalog {
	t.Helper()

	return map[string]Catalog{
		"memory":   NewMemoryCatalog(),
		"dynamodb": NewDDBCatalog(newMockDDBClient(), "geodist-snapshots"),
	}
}

func TestCatalogPublish(t *testing.T) {
	ctx := context.Background()

	for name, catalog := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			version, err := catalog.Publish(ctx, Entry{
				Name:    "cities",
				Key:     "cities/v1.snap",
				Formula: "haversine",
				Count:   4,
			})
			require.NoError(t, err)
			assert.EqualValues(t, 1, version)

			version, err = catalog.Publish(ctx, Entry{
				Name:    "cities",
				Key:     "cities/v2.snap",
				Formula: "haversine",
				Count:   5,
			})
			require.NoError(t, err)
			assert.EqualValues(t, 2, version)
		})
	}
}

func TestCatalogLatest(t *testing.T) {
	ctx := context.Background()

	for name, catalog := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			for i := 1; i <= 3; i++ {
				_, err := catalog.Publish(ctx, Entry{
					Name:    "cities",
					Key:     "cities/v" + strconv.Itoa(i) + ".snap",
					Formula: "vincenty",
					Count:   i,
				})
				require.NoError(t, err)
			}

			latest, err := catalog.Latest(ctx, "cities")
			require.NoError(t, err)

			assert.EqualValues(t, 3, latest.Version)
			assert.Equal(t, "cities/v3.snap", latest.Key)
			assert.Equal(t, "vincenty", latest.Formula)
			assert.Equal(t, 3, latest.Count)
			assert.False(t, latest.CreatedAt.IsZero())
		})
	}
}

func TestCatalogLatestNotFound(t *testing.T) {
	ctx := context.Background()

	for name, catalog := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Latest(ctx, "missing")
			require.ErrorIs(t, err, ErrSnapshotNotFound)
		})
	}
}

func TestCatalogVersions(t *testing.T) {
	ctx := context.Background()

	for name, catalog := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				_, err := catalog.Publish(ctx, Entry{Name: "cities", Key: "k"})
				require.NoError(t, err)
			}

			versions, err := catalog.Versions(ctx, "cities")
			require.NoError(t, err)
			require.Len(t, versions, 3)

			for i, entry := range versions {
				assert.EqualValues(t, i+1, entry.Version)
			}
		})
	}
}

func TestCatalogVersionsNotFound(t *testing.T) {
	ctx := context.Background()

	for name, catalog := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Versions(ctx, "missing")
			require.ErrorIs(t, err, ErrSnapshotNotFound)
		})
	}
}

func TestCatalogIsolatedNames(t *testing.T) {
	ctx := context.Background()

	for name, catalog := range catalogs(t) {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Publish(ctx, Entry{Name: "cities", Key: "a"})
			require.NoError(t, err)

			_, err = catalog.Publish(ctx, Entry{Name: "airports", Key: "b"})
			require.NoError(t, err)

			latest, err := catalog.Latest(ctx, "airports")
			require.NoError(t, err)

			assert.EqualValues(t, 1, latest.Version)
			assert.Equal(t, "b", latest.Key)
		})
	}
}

func TestDDBCatalogConcurrentPublish(t *testing.T) {
	ctx := context.Background()
	catalog := NewDDBCatalog(newMockDDBClient(), "geodist-snapshots")

	_, err := catalog.Publish(ctx, Entry{Name: "cities", Key: "v1"})
	require.NoError(t, err)

	var wg sync.WaitGroup

	var mu sync.Mutex
	successes := 0
	conflicts := 0

	for i := 0; i < 5; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := catalog.Publish(ctx, Entry{Name: "cities", Key: "race"})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				successes++
			case err == ErrVersionConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()
	assert.Greater(t, successes, 0, "at least one publisher should succeed")
}
