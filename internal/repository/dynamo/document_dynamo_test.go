package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdnapi/internal/model"
	"cdnapi/internal/repository"
)

const testHash = "8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4"

// fakeDynamo keeps items in a map keyed by pk, enough to exercise the
// repository without a live endpoint.
type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue

	lastPut    *dynamodb.PutItemInput
	lastUpdate *dynamodb.UpdateItemInput
	lastScan   *dynamodb.ScanInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func pkOf(key map[string]types.AttributeValue) string {
	s, _ := key["pk"].(*types.AttributeValueMemberS)
	if s == nil {
		return ""
	}
	return s.Value
}

func (f *fakeDynamo) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	item, ok := f.items[pkOf(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPut = params
	f.items[pkOf(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastUpdate = params
	item, ok := f.items[pkOf(params.Key)]
	if !ok {
		return &dynamodb.UpdateItemOutput{}, nil
	}

	appended, _ := params.ExpressionAttributeValues[":d"].(*types.AttributeValueMemberL)
	existing, _ := item["descriptions"].(*types.AttributeValueMemberL)
	merged := &types.AttributeValueMemberL{}
	if existing != nil {
		merged.Value = append(merged.Value, existing.Value...)
	}
	if appended != nil {
		merged.Value = append(merged.Value, appended.Value...)
	}
	item["descriptions"] = merged
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.lastScan = params
	out := &dynamodb.ScanOutput{}
	for _, item := range f.items {
		if params.Limit != nil && len(out.Items) >= int(*params.Limit) {
			break
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func TestDocumentDynamo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDocumentDynamo(fake, "files")

	now := time.Now().UTC().Truncate(time.Second)
	created, err := repo.Create(ctx, &model.Document{
		Hash:         testHash,
		StoragePath:  "documents/" + testHash + ".txt",
		Size:         2,
		ContentType:  "text/plain",
		ETag:         "abc123",
		CreatedAt:    now,
		Descriptions: []string{"greeting"},
	})
	require.NoError(t, err)
	assert.Equal(t, testHash, created.ID)
	assert.Equal(t, aws.String("files"), fake.lastPut.TableName)

	byHash, err := repo.FindByHash(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, testHash, byHash.ID)
	assert.Equal(t, "documents/"+testHash+".txt", byHash.StoragePath)
	assert.Equal(t, "abc123", byHash.ETag)
	assert.Equal(t, now, byHash.CreatedAt)
	assert.Equal(t, []string{"greeting"}, byHash.Descriptions)

	byID, err := repo.FindByID(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, byHash, byID)
}

func TestDocumentDynamo_FindMissing(t *testing.T) {
	repo := NewDocumentDynamo(newFakeDynamo(), "files")

	doc, err := repo.FindByID(context.Background(), testHash)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, doc)
}

func TestDocumentDynamo_AppendDescription(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDocumentDynamo(fake, "files")

	_, err := repo.Create(ctx, &model.Document{Hash: testHash, CreatedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, repo.AppendDescription(ctx, testHash, "first"))
	require.NoError(t, repo.AppendDescription(ctx, testHash, "second"))
	assert.Contains(t, aws.ToString(fake.lastUpdate.UpdateExpression), "list_append")

	doc, err := repo.FindByID(ctx, testHash)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, doc.Descriptions)
}

func TestDocumentDynamo_List(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	repo := NewDocumentDynamo(fake, "files")

	_, err := repo.Create(ctx, &model.Document{Hash: testHash, Size: 2, CreatedAt: time.Now()})
	require.NoError(t, err)

	docs, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, aws.Int32(10), fake.lastScan.Limit)
}

func TestDocumentDynamo_ValidID(t *testing.T) {
	repo := NewDocumentDynamo(newFakeDynamo(), "files")

	assert.True(t, repo.ValidID(testHash))
	assert.False(t, repo.ValidID("a2f1c6e0-5b3d-4f9a-8c2e-1d0b9a8f7e6d"))
	assert.False(t, repo.ValidID("short"))
}
