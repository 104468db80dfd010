package postgres

import (
	"strconv"
	"strings"

	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
)

// listPage は LIMIT/OFFSET による一覧取得の共通部分です。
// ページトークンは次ページのオフセットを表す 10 進数文字列です。
type listPage struct {
	conditions []string
	args       []any
}

func (p *listPage) where(column string, value any) {
	p.args = append(p.args, value)
	p.conditions = append(p.conditions, column+" = $"+strconv.Itoa(len(p.args)))
}

// build は SELECT 文と引数を返します。limit には次ページ判定用に 1 件多く指定します。
func (p *listPage) build(selectFrom, orderBy string, limit int, token string) (string, []any, int, error) {
	offset, err := parseOffsetToken(token)
	if err != nil {
		return "", nil, 0, err
	}

	query := selectFrom
	if len(p.conditions) > 0 {
		query += " WHERE " + strings.Join(p.conditions, " AND ")
	}

	args := append(p.args, limit+1)
	query += " ORDER BY " + orderBy + " LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	return query, args, offset, nil
}

func parseOffsetToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, record.ErrInvalidPageToken
	}
	return offset, nil
}

// nextToken は limit+1 件取得した結果から次ページトークンを決めます。
func nextToken(fetched, limit, offset int) string {
	if fetched > limit {
		return strconv.Itoa(offset + limit)
	}
	return ""
}
