package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	apperrors "inkwell-book-api/pkg/errors"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityTransient},
		{"deadline exceeded", context.DeadlineExceeded, SeverityTransient},
		{"cancelled", context.Canceled, SeverityTransient},
		{"wrapped deadline", fmt.Errorf("llm call: %w", context.DeadlineExceeded), SeverityTransient},
		{"net timeout", timeoutErr{}, SeverityTransient},
		{"credential revoked", apperrors.New(apperrors.CodeCredentialRevoked, "revoked"), SeverityFatal},
		{"permission denied", apperrors.New(apperrors.CodePermissionDenied, "denied"), SeverityFatal},
		{"rate limited", apperrors.New(apperrors.CodeTooManyRequests, "slow down"), SeverityTransient},
		{"llm call failed", apperrors.New(apperrors.CodeLLMCallFailed, "500 internal"), SeverityTransient},
		{"invalid key message", errors.New("Invalid API key provided"), SeverityFatal},
		{"quota message", errors.New("error: insufficient_quota for account"), SeverityFatal},
		{"billing message", errors.New("billing hard limit reached"), SeverityFatal},
		{"connection reset", errors.New("read tcp: connection reset by peer"), SeverityTransient},
		{"unknown", errors.New("something odd happened"), SeverityTransient},
	}

	c := NewDefaultClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.err); got != tt.want {
				t.Fatalf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityTransient.String() != "transient" {
		t.Fatalf("transient string = %q", SeverityTransient.String())
	}
	if SeverityFatal.String() != "fatal" {
		t.Fatalf("fatal string = %q", SeverityFatal.String())
	}
}

func TestClassifyDeadlineBeatsNetError(t *testing.T) {
	// 超时包装成 net.Error 时依旧判瞬时
	err := fmt.Errorf("dial: %w", timeoutErr{})
	if got := NewDefaultClassifier().Classify(err); got != SeverityTransient {
		t.Fatalf("Classify = %s, want transient", got)
	}
}
