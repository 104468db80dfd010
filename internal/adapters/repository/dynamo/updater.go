package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	dynamoapi "github.com/ogurasousui/philocom-backoffice/internal/platform/db/dynamo"
)

// UpdateItem は主キーで特定した 1 件に対して fields の属性のみを SET し、更新後の全属性を返します。
// 空の fields はストアを呼び出す前に record.ErrEmptyUpdate で拒否されます。
// キーに一致する項目がない場合は record.ErrNotFound を返します。
func UpdateItem(ctx context.Context, api dynamoapi.API, table string, key record.Key, fields record.Fields) (map[string]types.AttributeValue, error) {
	if err := record.CheckUpdate(table, key, fields); err != nil {
		return nil, err
	}

	keyAV, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return nil, fmt.Errorf("dynamo: marshal key: %w", err)
	}

	names := make(map[string]string, len(fields)+len(key))
	values := make(map[string]types.AttributeValue, len(fields))

	sets := make([]string, 0, len(fields))
	for i, name := range fields.Names() {
		namePlaceholder := fmt.Sprintf("#f%d", i)
		valuePlaceholder := fmt.Sprintf(":v%d", i)

		av, err := attributevalue.Marshal(fields[name])
		if err != nil {
			return nil, fmt.Errorf("dynamo: marshal field %s: %w", name, err)
		}

		names[namePlaceholder] = name
		values[valuePlaceholder] = av
		sets = append(sets, namePlaceholder+" = "+valuePlaceholder)
	}

	conditions := make([]string, 0, len(key))
	for i, name := range key.Names() {
		placeholder := fmt.Sprintf("#k%d", i)
		names[placeholder] = name
		conditions = append(conditions, "attribute_exists("+placeholder+")")
	}

	out, err := api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       keyAV,
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String(strings.Join(conditions, " AND ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("dynamo: update item in %s: %w", table, err)
	}

	return out.Attributes, nil
}
