package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sitepilot-api/internal/config"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/workflow/chain"
	wfmodel "sitepilot-api/internal/workflow/model"
	wfnode "sitepilot-api/internal/workflow/node"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/metrics"
)

// LLMGenerator 基于 eino 链的生成服务实现
type LLMGenerator struct {
	steps   *chain.SiteStepChain
	clarify *chain.ClarifyChain
	cfg     *config.LLMConfig
}

// NewLLMGenerator 创建 LLM 生成器
func NewLLMGenerator(steps *chain.SiteStepChain, clarify *chain.ClarifyChain, cfg *config.Config) *LLMGenerator {
	return &LLMGenerator{
		steps:   steps,
		clarify: clarify,
		cfg:     &cfg.LLM,
	}
}

// GenerateStep 执行单个生成步骤并返回抽取后的 JSON 输出
func (g *LLMGenerator) GenerateStep(ctx context.Context, step entity.StepName, brief wfmodel.SiteBrief, prior map[string]json.RawMessage) (json.RawMessage, error) {
	provider, model := g.providerModel()
	start := time.Now()

	msg, err := g.steps.Invoke(ctx, &wfmodel.SiteStepInput{
		Step:         string(step),
		Brief:        brief,
		PriorOutputs: prior,
		Provider:     provider,
	})

	metrics.LLMCallDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(provider, model, "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError,
			fmt.Sprintf("llm call for step %s failed", step))
	}
	metrics.LLMCallTotal.WithLabelValues(provider, model, "ok").Inc()

	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(msg.ResponseMeta.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(msg.ResponseMeta.Usage.CompletionTokens))
	}

	raw := wfnode.ExtractJSONObject(msg.Content)
	if !json.Valid([]byte(raw)) {
		return nil, apperrors.New(apperrors.CodeStepValidationFailed,
			fmt.Sprintf("step %s returned invalid JSON", step))
	}
	return json.RawMessage(raw), nil
}

// Evaluate 评估需求充分性
func (g *LLMGenerator) Evaluate(ctx context.Context, brief wfmodel.SiteBrief) (*wfmodel.ClarifyOutput, error) {
	provider, model := g.providerModel()
	start := time.Now()

	out, err := g.clarify.Invoke(ctx, &wfmodel.ClarifyInput{
		Brief:    brief,
		Provider: provider,
	})

	metrics.LLMCallDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(provider, model, "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "clarification evaluation failed")
	}
	metrics.LLMCallTotal.WithLabelValues(provider, model, "ok").Inc()

	if out.Meta.PromptTokens > 0 || out.Meta.CompletionTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(out.Meta.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(out.Meta.CompletionTokens))
	}

	return out, nil
}

func (g *LLMGenerator) providerModel() (string, string) {
	provider := g.cfg.DefaultProvider
	model := ""
	if pc, ok := g.cfg.Providers[provider]; ok {
		model = pc.Model
	}
	return provider, model
}
