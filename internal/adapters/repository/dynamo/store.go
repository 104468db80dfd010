package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	dynamoapi "github.com/ogurasousui/philocom-backoffice/internal/platform/db/dynamo"
)

const (
	attrID        = "id"
	attrCreatedAt = "createdAt"
	attrUpdatedAt = "updatedAt"
)

// table は 1 テーブル分の共通操作です。各リポジトリはこれを埋め込みます。
type table struct {
	client dynamoapi.API
	name   string
}

func idKey(id string) record.Key {
	return record.Key{attrID: id}
}

func idKeyAV(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{attrID: &types.AttributeValueMemberS{Value: id}}
}

// putNew は同じ id の項目が存在しない場合のみ書き込みます。
func (t table) putNew(ctx context.Context, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("dynamo: marshal item: %w", err)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(t.name),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": attrID},
	})
	if err != nil {
		return fmt.Errorf("dynamo: put item in %s: %w", t.name, err)
	}
	return nil
}

// get は id で項目を取得します。存在しない場合は record.ErrNotFound です。
func (t table) get(ctx context.Context, id string, out any) error {
	resp, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            idKeyAV(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("dynamo: get item from %s: %w", t.name, err)
	}
	if len(resp.Item) == 0 {
		return record.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return fmt.Errorf("dynamo: unmarshal item: %w", err)
	}
	return nil
}

// update は汎用アップデータで部分更新し、結果を out に格納します。
func (t table) update(ctx context.Context, id string, fields record.Fields, out any) error {
	attrs, err := UpdateItem(ctx, t.client, t.name, idKey(id), fields)
	if err != nil {
		return err
	}
	if err := attributevalue.UnmarshalMap(attrs, out); err != nil {
		return fmt.Errorf("dynamo: unmarshal item: %w", err)
	}
	return nil
}

// delete は id の項目を削除します。存在しない場合は record.ErrNotFound です。
func (t table) delete(ctx context.Context, id string) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(t.name),
		Key:                      idKeyAV(id),
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": attrID},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return record.ErrNotFound
		}
		return fmt.Errorf("dynamo: delete item from %s: %w", t.name, err)
	}
	return nil
}

// queryOne は GSI を等価条件で検索し、最初の 1 件を out に格納します。
func (t table) queryOne(ctx context.Context, index, attr, value string, out any) error {
	resp, err := t.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(t.name),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("dynamo: query %s on %s: %w", index, t.name, err)
	}
	if len(resp.Items) == 0 {
		return record.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(resp.Items[0], out); err != nil {
		return fmt.Errorf("dynamo: unmarshal item: %w", err)
	}
	return nil
}

// eqFilter は属性の等価フィルタです。
type eqFilter struct {
	attr  string
	value string
}

func buildFilter(filters []eqFilter) (*string, map[string]string, map[string]types.AttributeValue) {
	if len(filters) == 0 {
		return nil, nil, nil
	}

	names := make(map[string]string, len(filters))
	values := make(map[string]types.AttributeValue, len(filters))
	expr := ""
	for i, f := range filters {
		n := fmt.Sprintf("#q%d", i)
		v := fmt.Sprintf(":q%d", i)
		names[n] = f.attr
		values[v] = &types.AttributeValueMemberS{Value: f.value}
		if expr != "" {
			expr += " AND "
		}
		expr += n + " = " + v
	}
	return aws.String(expr), names, values
}

// scanPage はテーブルを 1 ページ分走査します。
func (t table) scanPage(ctx context.Context, filters []eqFilter, limit int, token string, out any) (string, error) {
	start, err := decodePageToken(token)
	if err != nil {
		return "", err
	}

	expr, names, values := buildFilter(filters)
	resp, err := t.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(t.name),
		FilterExpression:          expr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(int32(limit)),
		ExclusiveStartKey:         start,
	})
	if err != nil {
		return "", fmt.Errorf("dynamo: scan %s: %w", t.name, err)
	}

	if err := attributevalue.UnmarshalListOfMaps(resp.Items, out); err != nil {
		return "", fmt.Errorf("dynamo: unmarshal items: %w", err)
	}
	return encodePageToken(resp.LastEvaluatedKey)
}

// queryPage は GSI のパーティションを新しい順に 1 ページ分取得します。
func (t table) queryPage(ctx context.Context, index string, partition eqFilter, filters []eqFilter, limit int, token string, out any) (string, error) {
	start, err := decodePageToken(token)
	if err != nil {
		return "", err
	}

	expr, names, values := buildFilter(filters)
	if names == nil {
		names = map[string]string{}
		values = map[string]types.AttributeValue{}
	}
	names["#pk"] = partition.attr
	values[":pk"] = &types.AttributeValueMemberS{Value: partition.value}

	resp, err := t.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(t.name),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#pk = :pk"),
		FilterExpression:          expr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
		ExclusiveStartKey:         start,
	})
	if err != nil {
		return "", fmt.Errorf("dynamo: query %s on %s: %w", index, t.name, err)
	}

	if err := attributevalue.UnmarshalListOfMaps(resp.Items, out); err != nil {
		return "", fmt.Errorf("dynamo: unmarshal items: %w", err)
	}
	return encodePageToken(resp.LastEvaluatedKey)
}

// translate は record.ErrNotFound をドメインの not found に置き換えます。
func translate(err, notFound error) error {
	if errors.Is(err, record.ErrNotFound) {
		return notFound
	}
	return err
}
