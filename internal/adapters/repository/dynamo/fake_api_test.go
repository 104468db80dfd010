package dynamo

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI は単一テーブルを id キーで保持するインメモリ実装です。
// 式はこのパッケージが生成する "#a = :b AND ..." と "SET #a = :b, ..." の形のみ解釈します。
type fakeAPI struct {
	items   map[string]map[string]types.AttributeValue
	order   []string
	err     error
	updates []*dynamodb.UpdateItemInput
	queries []*dynamodb.QueryInput
	scans   []*dynamodb.ScanInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: make(map[string]map[string]types.AttributeValue)}
}

func idOf(key map[string]types.AttributeValue) string {
	if s, ok := key[attrID].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[idOf(in.Key)]}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := idOf(in.Item)
	if _, exists := f.items[id]; exists && in.ConditionExpression != nil {
		return nil, conditionFailed()
	}
	f.items[id] = in.Item
	f.order = append(f.order, id)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[idOf(in.Key)]
	if !ok {
		return nil, conditionFailed()
	}

	updated := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		updated[k] = v
	}
	for _, assignment := range strings.Split(strings.TrimPrefix(aws.ToString(in.UpdateExpression), "SET "), ", ") {
		parts := strings.SplitN(assignment, " = ", 2)
		updated[in.ExpressionAttributeNames[parts[0]]] = in.ExpressionAttributeValues[parts[1]]
	}
	f.items[idOf(in.Key)] = updated
	return &dynamodb.UpdateItemOutput{Attributes: updated}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := idOf(in.Key)
	if _, ok := f.items[id]; !ok {
		return nil, conditionFailed()
	}
	delete(f.items, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	if f.err != nil {
		return nil, f.err
	}
	expr := aws.ToString(in.KeyConditionExpression)
	if in.FilterExpression != nil {
		expr += " AND " + aws.ToString(in.FilterExpression)
	}
	items, last := f.page(expr, in.ExpressionAttributeNames, in.ExpressionAttributeValues, in.Limit, in.ExclusiveStartKey)
	return &dynamodb.QueryOutput{Items: items, LastEvaluatedKey: last}, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans = append(f.scans, in)
	if f.err != nil {
		return nil, f.err
	}
	items, last := f.page(aws.ToString(in.FilterExpression), in.ExpressionAttributeNames, in.ExpressionAttributeValues, in.Limit, in.ExclusiveStartKey)
	return &dynamodb.ScanOutput{Items: items, LastEvaluatedKey: last}, nil
}

// page は Limit を評価件数として扱い、フィルタ前に件数を数えます。
func (f *fakeAPI) page(expr string, names map[string]string, values map[string]types.AttributeValue, limit *int32, start map[string]types.AttributeValue) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	ids := f.order
	if startID := idOf(start); startID != "" {
		for i, id := range ids {
			if id == startID {
				ids = ids[i+1:]
				break
			}
		}
	}

	var (
		out       []map[string]types.AttributeValue
		evaluated int
		lastID    string
	)
	for _, id := range ids {
		item, ok := f.items[id]
		if !ok {
			continue
		}
		if limit != nil && evaluated == int(*limit) {
			return out, map[string]types.AttributeValue{attrID: &types.AttributeValueMemberS{Value: lastID}}
		}
		evaluated++
		lastID = id
		if matches(item, expr, names, values) {
			out = append(out, item)
		}
	}
	return out, nil
}

func matches(item map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) bool {
	if expr == "" {
		return true
	}
	for _, clause := range strings.Split(expr, " AND ") {
		parts := strings.SplitN(clause, " = ", 2)
		got, ok := item[names[parts[0]]].(*types.AttributeValueMemberS)
		want, ok2 := values[parts[1]].(*types.AttributeValueMemberS)
		if !ok || !ok2 || got.Value != want.Value {
			return false
		}
	}
	return true
}

var errStoreDown = errors.New("dial tcp: connection refused")
