package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/philocom-backoffice/internal/core/record"
	pgdb "github.com/ogurasousui/philocom-backoffice/internal/platform/db/postgres"
)

// UpdateRow は主キーで特定した 1 行の fields の列のみを更新し、returning の列を返す行を返します。
// 空の fields はクエリを発行する前に record.ErrEmptyUpdate で拒否されます。
// 一致する行がない場合、返された行の Scan が pgx.ErrNoRows を返します。
func UpdateRow(ctx context.Context, exec pgdb.Queryer, table string, key record.Key, fields record.Fields, returning []string) (pgx.Row, error) {
	if err := record.CheckUpdate(table, key, fields); err != nil {
		return nil, err
	}

	args := make([]any, 0, len(fields)+len(key))

	sets := make([]string, 0, len(fields))
	for _, name := range fields.Names() {
		args = append(args, fields[name])
		sets = append(sets, pgx.Identifier{name}.Sanitize()+" = $"+strconv.Itoa(len(args)))
	}

	conditions := make([]string, 0, len(key))
	for _, name := range key.Names() {
		args = append(args, key[name])
		conditions = append(conditions, pgx.Identifier{name}.Sanitize()+" = $"+strconv.Itoa(len(args)))
	}

	query := "UPDATE " + pgx.Identifier{table}.Sanitize() +
		" SET " + strings.Join(sets, ", ") +
		" WHERE " + strings.Join(conditions, " AND ")

	if len(returning) > 0 {
		cols := make([]string, 0, len(returning))
		for _, col := range returning {
			cols = append(cols, pgx.Identifier{col}.Sanitize())
		}
		query += " RETURNING " + strings.Join(cols, ", ")
	}

	return exec.QueryRow(ctx, query, args...), nil
}
