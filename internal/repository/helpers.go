package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
)

// translate 将唯一约束冲突转换为 ErrDuplicateRecord
// 需要 gorm.Config.TranslateError = true
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicateRecord
	}
	return err
}

// updateVersioned 带乐观锁的更新：WHERE 条件附加 version，影响行数为 0 时返回 ErrOptimisticLock
func updateVersioned(ctx context.Context, db *gorm.DB, m interface{}, where string, id string, version *int, fields map[string]interface{}) error {
	oldVersion := *version
	fields["version"] = oldVersion + 1
	fields["updated_at"] = gorm.Expr("NOW()")

	result := db.WithContext(ctx).
		Model(m).
		Where(where+" AND version = ?", id, oldVersion).
		Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	*version = oldVersion + 1
	return nil
}

// softDelete 软删除并记录操作人
func softDelete(ctx context.Context, db *gorm.DB, m interface{}, where string, id string, deletedBy string) error {
	return db.WithContext(ctx).
		Model(m).
		Where(where, id).
		Updates(map[string]interface{}{
			"deleted_by": nullableID(deletedBy),
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// nullableID 空字符串写入 NULL（uuid 列不接受空串）
func nullableID(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}
