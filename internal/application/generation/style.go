// Package generation 实现章节生成管线
package generation

import (
	"inkwell-book-api/internal/domain/entity"
	apperrors "inkwell-book-api/pkg/errors"
)

// ParseStyle 解析写作风格，空值回退为 standard
func ParseStyle(s string) (entity.WritingStyle, error) {
	if s == "" {
		return entity.StyleStandard, nil
	}
	style := entity.WritingStyle(s)
	if !style.Valid() {
		return "", apperrors.New(apperrors.CodeInvalidStyle, "unknown writing style").WithDetail(s)
	}
	return style, nil
}
