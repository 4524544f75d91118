package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrDuplicate 违反唯一约束（邮箱、收藏、观影记录）
	ErrDuplicate = errors.New("记录已存在")
	// ErrNotFound 记录或其引用的记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrInvalid 违反 CHECK 约束
	ErrInvalid = errors.New("数据不满足约束")
)

// translate 将 GORM 翻译后的数据库错误映射为仓库层错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return err
}
