package s3

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/wikiflow/blobstore"
)

// CatalogStore implements blobstore.BlobStore on top of another store, with
// a DynamoDB table as the catalog of committed blobs.
//
// A blob becomes visible to Open and List only after its upload finished
// and its catalog entry was written. A reader listing partitions therefore
// never sees a half-uploaded partition, and two writers publishing the same
// partition concurrently are detected with ErrConcurrentModification.
//
// Table schema:
//   - Partition key: scope (string), e.g. "s3://bucket/prefix"
//   - Sort key: name (string), the blob name
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name wikiflow-catalog \
//	  --attribute-definitions AttributeName=scope,AttributeType=S AttributeName=name,AttributeType=S \
//	  --key-schema AttributeName=scope,KeyType=HASH AttributeName=name,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CatalogStore struct {
	inner     blobstore.BlobStore
	client    DDBClient
	tableName string
	scope     string
}

var _ blobstore.BlobStore = (*CatalogStore)(nil)

// DDBClient is the subset of *dynamodb.Client used by CatalogStore.
type DDBClient interface {
	dynamodb.QueryAPIClient

	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrConcurrentModification is returned when another writer committed the
// same blob between our read of the catalog and our commit.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// NewCatalogStore wraps inner with the catalog in tableName. All entries
// are kept under scope, so one table can serve several stores.
func NewCatalogStore(inner blobstore.BlobStore, client DDBClient, tableName, scope string) *CatalogStore {
	return &CatalogStore{
		inner:     inner,
		client:    client,
		tableName: tableName,
		scope:     scope,
	}
}

// NewCatalog loads the default AWS configuration and wraps inner with the
// catalog in tableName.
func NewCatalog(ctx context.Context, inner blobstore.BlobStore, tableName, scope string, optFns ...Option) (*CatalogStore, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return NewCatalogStore(inner, dynamodb.NewFromConfig(cfg), tableName, scope), nil
}

func (s *CatalogStore) itemKey(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"scope": &types.AttributeValueMemberS{Value: s.scope},
		"name":  &types.AttributeValueMemberS{Value: name},
	}
}

// Open returns the blob if it is committed.
func (s *CatalogStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	gen, err := s.generation(ctx, name)
	if err != nil {
		return nil, err
	}
	if gen == 0 {
		return nil, blobstore.ErrNotFound
	}
	return s.inner.Open(ctx, name)
}

// Create streams into the inner store; the blob is committed on Close.
func (s *CatalogStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &committingWriter{WritableBlob: w, commit: func(size int64) error {
		return s.commit(ctx, name, size)
	}}, nil
}

// Put writes data and commits it.
func (s *CatalogStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.inner.Put(ctx, name, data); err != nil {
		return err
	}
	return s.commit(ctx, name, int64(len(data)))
}

// Delete removes the catalog entry first, so the blob disappears from
// listings even if the object delete fails.
func (s *CatalogStore) Delete(ctx context.Context, name string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.itemKey(name),
	}); err != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}
	return s.inner.Delete(ctx, name)
}

// List queries the committed names starting with prefix.
func (s *CatalogStore) List(ctx context.Context, prefix string) ([]string, error) {
	in := &dynamodb.QueryInput{
		TableName:                aws.String(s.tableName),
		KeyConditionExpression:   aws.String("#s = :scope"),
		ExpressionAttributeNames: map[string]string{"#s": "scope", "#n": "name"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":scope": &types.AttributeValueMemberS{Value: s.scope},
		},
		ProjectionExpression: aws.String("#n"),
		ConsistentRead:       aws.Bool(true),
	}
	if prefix != "" {
		in.KeyConditionExpression = aws.String("#s = :scope AND begins_with(#n, :prefix)")
		in.ExpressionAttributeValues[":prefix"] = &types.AttributeValueMemberS{Value: prefix}
	}

	var names []string
	p := dynamodb.NewQueryPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query catalog: %w", err)
		}
		for _, item := range page.Items {
			if v, ok := item["name"].(*types.AttributeValueMemberS); ok {
				names = append(names, v.Value)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

// generation returns the committed generation of name, or 0.
func (s *CatalogStore) generation(ctx context.Context, name string) (uint64, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.itemKey(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog: %w", err)
	}
	if resp.Item == nil {
		return 0, nil
	}
	attr, ok := resp.Item["generation"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("invalid generation attribute in catalog")
	}
	gen, err := strconv.ParseUint(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse generation: %w", err)
	}
	return gen, nil
}

// commit bumps the generation of name with a conditional write.
func (s *CatalogStore) commit(ctx context.Context, name string, size int64) error {
	current, err := s.generation(ctx, name)
	if err != nil {
		return err
	}

	item := s.itemKey(name)
	item["generation"] = &types.AttributeValueMemberN{Value: strconv.FormatUint(current+1, 10)}
	item["size"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(size, 10)}

	in := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}
	if current == 0 {
		in.ConditionExpression = aws.String("attribute_not_exists(#n)")
		in.ExpressionAttributeNames = map[string]string{"#n": "name"}
	} else {
		in.ConditionExpression = aws.String("#g = :gen")
		in.ExpressionAttributeNames = map[string]string{"#g": "generation"}
		in.ExpressionAttributeValues = map[string]types.AttributeValue{
			":gen": &types.AttributeValueMemberN{Value: strconv.FormatUint(current, 10)},
		}
	}

	if _, err := s.client.PutItem(ctx, in); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit catalog entry: %w", err)
	}
	return nil
}

type committingWriter struct {
	blobstore.WritableBlob
	commit  func(size int64) error
	written int64
}

func (w *committingWriter) Write(p []byte) (int, error) {
	n, err := w.WritableBlob.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *committingWriter) Close() error {
	if err := w.WritableBlob.Close(); err != nil {
		return err
	}
	return w.commit(w.written)
}
