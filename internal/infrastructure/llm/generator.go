package llm

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inkwell-book-api/internal/application/generation"
	apperrors "inkwell-book-api/pkg/errors"
	"inkwell-book-api/pkg/metrics"
)

var tracer = otel.Tracer("llm")

// ChapterGenerator 基于 Eino ChatModel 的章节生成器
type ChapterGenerator struct {
	factory  *EinoFactory
	provider string
}

// NewChapterGenerator 创建章节生成器，provider 为空时使用默认 Provider
func NewChapterGenerator(factory *EinoFactory, provider string) *ChapterGenerator {
	if provider == "" {
		provider = factory.DefaultProvider()
	}
	return &ChapterGenerator{
		factory:  factory,
		provider: provider,
	}
}

// GenerateChapter 生成单章内容
func (g *ChapterGenerator) GenerateChapter(ctx context.Context, req *generation.Request) (*generation.Result, error) {
	ctx, span := tracer.Start(ctx, "llm.GenerateChapter",
		trace.WithAttributes(
			attribute.String("llm.provider", g.provider),
			attribute.Int("chapter.number", req.Chapter.Number),
			attribute.String("chapter.style", string(req.Style)),
		))
	defer span.End()

	chatModel, err := g.factory.Get(ctx, g.provider)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "failed to create chat model")
	}

	modelName := g.factory.ModelName(g.provider)
	msgs := buildChapterMessages(req)

	start := time.Now()
	outMsg, err := chatModel.Generate(ctx, msgs)
	elapsed := time.Since(start)

	metrics.LLMCallDuration.WithLabelValues(g.provider, modelName).Observe(elapsed.Seconds())

	if err != nil {
		span.RecordError(err)
		metrics.LLMCallTotal.WithLabelValues(g.provider, modelName, "error").Inc()
		return nil, classifyProviderError(err)
	}
	metrics.LLMCallTotal.WithLabelValues(g.provider, modelName, "ok").Inc()

	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return nil, apperrors.New(apperrors.CodeEmptyResponse, "empty LLM response")
	}

	result := &generation.Result{
		Content:  strings.TrimSpace(outMsg.Content),
		Provider: g.provider,
		Model:    modelName,
	}

	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		usage := outMsg.ResponseMeta.Usage
		result.TokensUsed = usage.PromptTokens + usage.CompletionTokens
		metrics.LLMTokensUsed.WithLabelValues(g.provider, modelName, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(g.provider, modelName, "completion").Add(float64(usage.CompletionTokens))
	}

	span.SetAttributes(attribute.Int("llm.tokens_used", result.TokensUsed))
	return result, nil
}

// classifyProviderError 把 Provider 错误映射为带错误码的应用错误
// 凭证类错误在管线中会被判为致命
func classifyProviderError(err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "incorrect api key") || strings.Contains(msg, "unauthorized"):
		return apperrors.Wrap(err, apperrors.CodeCredentialRevoked, "generation credential rejected by provider")
	case strings.Contains(msg, "403") || strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "insufficient_quota") || strings.Contains(msg, "billing"):
		return apperrors.Wrap(err, apperrors.CodePermissionDenied, "permission denied by provider")
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return apperrors.Wrap(err, apperrors.CodeTooManyRequests, "provider rate limited")
	default:
		return apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "LLM call failed")
	}
}
