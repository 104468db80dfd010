package record

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultPageSize は一覧取得時の既定件数です。
	DefaultPageSize = 50
	// MaxPageSize は一覧取得時の上限件数です。
	MaxPageSize = 200
)

// Key はレコードを一意に特定する主キー記述子です。属性名から値への写像です。
type Key map[string]any

// Fields は部分更新で設定する属性名と新しい値の写像です。
type Fields map[string]any

// Names は属性名を昇順で返します。更新式を決定的に組み立てるために利用します。
func (k Key) Names() []string {
	return sortedNames(k)
}

// Names は更新対象の属性名を昇順で返します。
func (f Fields) Names() []string {
	return sortedNames(f)
}

// Set は値を設定し、メソッドチェーンのために自身を返します。
func (f Fields) Set(name string, value any) Fields {
	f[name] = value
	return f
}

// CheckUpdate は部分更新の入力を検証します。
// 空の更新はストアを呼び出す前に ErrEmptyUpdate で拒否されます。
func CheckUpdate(table string, key Key, fields Fields) error {
	if strings.TrimSpace(table) == "" {
		return ErrInvalidTable
	}
	if len(key) == 0 {
		return ErrInvalidKey
	}
	if len(fields) == 0 {
		return ErrEmptyUpdate
	}
	for name := range fields {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty attribute name", ErrInvalidField)
		}
		if _, ok := key[name]; ok {
			return fmt.Errorf("%w: key attribute %q cannot be updated", ErrInvalidField, name)
		}
	}
	return nil
}

// NormalizePageSize はページサイズを既定値と上限で正規化します。
func NormalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return DefaultPageSize, nil
	}
	if pageSize > MaxPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
