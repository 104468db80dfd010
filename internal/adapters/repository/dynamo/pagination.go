package dynamo

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
)

// encodePageToken は LastEvaluatedKey を不透明なページトークンに変換します。
func encodePageToken(lastKey map[string]types.AttributeValue) (string, error) {
	if len(lastKey) == 0 {
		return "", nil
	}

	var plain map[string]any
	if err := attributevalue.UnmarshalMap(lastKey, &plain); err != nil {
		return "", err
	}

	b, err := json.Marshal(plain)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// decodePageToken はページトークンを ExclusiveStartKey に戻します。
func decodePageToken(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, record.ErrInvalidPageToken
	}

	var plain map[string]any
	if err := json.Unmarshal(b, &plain); err != nil || len(plain) == 0 {
		return nil, record.ErrInvalidPageToken
	}

	key, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, record.ErrInvalidPageToken
	}
	return key, nil
}
