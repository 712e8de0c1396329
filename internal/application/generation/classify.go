package generation

import (
	"context"
	"errors"
	"net"
	"strings"

	apperrors "inkwell-book-api/pkg/errors"
)

// Severity 错误严重级别
type Severity int

const (
	// SeverityTransient 瞬时错误，可在重试预算内重试
	SeverityTransient Severity = iota
	// SeverityFatal 致命错误，立即终止整轮运行
	SeverityFatal
)

// String 返回级别名称
func (s Severity) String() string {
	if s == SeverityFatal {
		return "fatal"
	}
	return "transient"
}

// Classifier 错误分类器
type Classifier interface {
	Classify(err error) Severity
}

// DefaultClassifier 默认分类器
// 凭证吊销、权限拒绝等不可恢复错误判为致命；超时、网络抖动、
// 限流、5xx 等判为瞬时。未知错误按瞬时处理，交给重试预算兜底
type DefaultClassifier struct{}

// NewDefaultClassifier 创建默认分类器
func NewDefaultClassifier() *DefaultClassifier {
	return &DefaultClassifier{}
}

var fatalCodes = map[apperrors.ErrorCode]bool{
	apperrors.CodeCredentialRevoked: true,
	apperrors.CodePermissionDenied:  true,
	apperrors.CodeUnauthorized:      true,
	apperrors.CodeForbidden:         true,
	apperrors.CodeInvalidStyle:      true,
}

var fatalMarkers = []string{
	"invalid api key",
	"incorrect api key",
	"unauthorized",
	"forbidden",
	"permission denied",
	"account deactivated",
	"billing",
	"insufficient_quota",
}

// Classify 判定错误级别
func (c *DefaultClassifier) Classify(err error) Severity {
	if err == nil {
		return SeverityTransient
	}

	// 超时与取消不是凭证问题
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return SeverityTransient
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if fatalCodes[appErr.Code] {
			return SeverityFatal
		}
		return SeverityTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return SeverityTransient
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return SeverityFatal
		}
	}

	return SeverityTransient
}
