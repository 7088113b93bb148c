package repository

import (
	"errors"

	"github.com/lib/pq"

	"github.com/hitoshi/inspiration/internal/model"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const pqUniqueViolation = "23505"

// uniqueConstraintFields は一意制約名と対応する列名のマッピング。
var uniqueConstraintFields = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
}

// asDuplicateError は一意制約違反を*model.ErrDuplicateに変換する。
// 一意制約違反でない場合はnilを返す。
func asDuplicateError(err error) *model.ErrDuplicate {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pqUniqueViolation {
		return nil
	}
	field, ok := uniqueConstraintFields[pqErr.Constraint]
	if !ok {
		field = pqErr.Constraint
	}
	return &model.ErrDuplicate{Field: field}
}
