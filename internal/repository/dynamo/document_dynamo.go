package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"cdnapi/internal/config"
	"cdnapi/internal/hash"
	"cdnapi/internal/model"
	"cdnapi/internal/repository"
)

// API is the subset of the DynamoDB client the repository uses; tests provide
// a fake implementation.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// NewClient builds a DynamoDB client from the shared AWS settings. A custom
// endpoint targets DynamoDB-compatible services such as LocalStack.
func NewClient(cfg config.AWSConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return client, nil
}

// DocumentDynamo is the DynamoDB realization of repository.DocumentRepository:
// a single table keyed by the content hash, so id == hash and FindByID and
// FindByHash are the same lookup. Scan order is unspecified, which the
// repository contract allows. Concurrent first uploads of the same content
// resolve as last-write-wins over identical items.
type DocumentDynamo struct {
	client API
	table  string
}

// NewDocumentDynamo creates a repository over the given table.
func NewDocumentDynamo(client API, table string) *DocumentDynamo {
	return &DocumentDynamo{client: client, table: table}
}

var _ repository.DocumentRepository = (*DocumentDynamo)(nil)

// documentItem is the wire shape of one table item. Attribute names follow
// the files-table convention: pk doubles as the content checksum.
type documentItem struct {
	PK           string   `dynamodbav:"pk"`
	Checksum     string   `dynamodbav:"checksum"`
	Key          string   `dynamodbav:"key"`
	Size         int64    `dynamodbav:"size"`
	ETag         string   `dynamodbav:"etag,omitempty"`
	ContentType  string   `dynamodbav:"contentType"`
	ProcessedAt  string   `dynamodbav:"processedAt"`
	Descriptions []string `dynamodbav:"descriptions,omitempty"`
}

func (i documentItem) toModel() model.Document {
	d := model.Document{
		ID:           i.PK,
		Hash:         i.Checksum,
		StoragePath:  i.Key,
		Size:         i.Size,
		ETag:         i.ETag,
		ContentType:  i.ContentType,
		Descriptions: i.Descriptions,
	}
	// An unparsable timestamp is left zero; the service coalesces it at read
	// time rather than failing the read.
	if ts, err := time.Parse(time.RFC3339, i.ProcessedAt); err == nil {
		d.CreatedAt = ts
	}
	return d
}

// Create puts a new item keyed by the content hash and returns the stored
// document with id == hash.
func (r *DocumentDynamo) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	item := documentItem{
		PK:           doc.Hash,
		Checksum:     doc.Hash,
		Key:          doc.StoragePath,
		Size:         doc.Size,
		ETag:         doc.ETag,
		ContentType:  doc.ContentType,
		ProcessedAt:  doc.CreatedAt.UTC().Format(time.RFC3339),
		Descriptions: doc.Descriptions,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("marshal document item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return nil, err
	}

	out := item.toModel()
	return &out, nil
}

// FindByHash looks the item up by its partition key.
func (r *DocumentDynamo) FindByHash(ctx context.Context, h string) (*model.Document, error) {
	return r.getItem(ctx, h)
}

// FindByID is the same lookup as FindByHash under this identity scheme.
func (r *DocumentDynamo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	return r.getItem(ctx, id)
}

func (r *DocumentDynamo) getItem(ctx context.Context, pk string) (*model.Document, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: pk},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrNotFound
	}

	var item documentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal document item: %w", err)
	}
	doc := item.toModel()
	return &doc, nil
}

// AppendDescription appends one annotation to the item's descriptions list,
// creating the list on first append.
func (r *DocumentDynamo) AppendDescription(ctx context.Context, id string, description string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: aws.String("SET descriptions = list_append(if_not_exists(descriptions, :empty), :d)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberL{
				Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: description}},
			},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
	})
	return err
}

// List scans up to limit items; DynamoDB scans carry no ordering guarantee.
func (r *DocumentDynamo) List(ctx context.Context, limit int) ([]model.Document, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
		Limit:     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, err
	}

	docs := make([]model.Document, 0, len(out.Items))
	for _, raw := range out.Items {
		var item documentItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal document item: %w", err)
		}
		docs = append(docs, item.toModel())
	}
	return docs, nil
}

// ValidID reports whether id is a well-formed content fingerprint, the key
// shape of this identity scheme.
func (r *DocumentDynamo) ValidID(id string) bool {
	return hash.IsValid(id)
}
