package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/marketplace-api/internal/domain"
)

// AssetRepo provides typed DynamoDB operations for the media assets table.
type AssetRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAssetRepo(client *dynamodb.Client, tableName string) *AssetRepo {
	return &AssetRepo{client: client, tableName: tableName}
}

func (r *AssetRepo) Put(ctx context.Context, a *domain.Asset) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal asset: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AssetRepo) Get(ctx context.Context, publicID string) (*domain.Asset, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("public_id", publicID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("asset not found: %w", domain.ErrNotFound)
	}
	var a domain.Asset
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepo) SoftDelete(ctx context.Context, publicID string) error {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{
		"enable":     false,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("public_id", publicID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}
