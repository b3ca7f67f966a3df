// Package chain 基于 eino compose 组装生成链
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	wfmodel "sitepilot-api/internal/workflow/model"
	wfnode "sitepilot-api/internal/workflow/node"
	workflowport "sitepilot-api/internal/workflow/port"
	workflowprompt "sitepilot-api/internal/workflow/prompt"
	"sitepilot-api/pkg/logger"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// SiteStepChain 单个生成步骤的调用链：模板渲染 -> LLM 调用 -> 输出。
// 同一个实例可服务所有步骤，按步骤名缓存编译后的链。
type SiteStepChain struct {
	factory workflowport.ChatModelFactory

	mu     sync.Mutex
	chains map[string]compose.Runnable[*wfmodel.SiteStepInput, *schema.Message]
}

func NewSiteStepChain(factory workflowport.ChatModelFactory) *SiteStepChain {
	return &SiteStepChain{
		factory: factory,
		chains:  make(map[string]compose.Runnable[*wfmodel.SiteStepInput, *schema.Message]),
	}
}

func (c *SiteStepChain) Invoke(ctx context.Context, in *wfmodel.SiteStepInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain(in.Step)
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type siteStepChainState struct {
	In       *wfmodel.SiteStepInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *SiteStepChain) getChain(step string) (compose.Runnable[*wfmodel.SiteStepInput, *schema.Message], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if chain, ok := c.chains[step]; ok {
		return chain, nil
	}
	chain, err := c.buildChain(context.Background(), step)
	if err != nil {
		return nil, err
	}
	c.chains[step] = chain
	return chain, nil
}

func (c *SiteStepChain) buildChain(ctx context.Context, step string) (compose.Runnable[*wfmodel.SiteStepInput, *schema.Message], error) {
	promptID, err := stepPromptID(step)
	if err != nil {
		return nil, err
	}

	chain := compose.NewChain[*wfmodel.SiteStepInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.SiteStepInput) (*siteStepChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &siteStepChainState{In: in}, nil
		}),
		compose.WithNodeName(step+".init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *siteStepChainState) (*siteStepChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			tpl, err := defaultPromptRegistry.ChatTemplate(promptID)
			if err != nil {
				return nil, err
			}
			vars := map[string]any{
				"brief_block": BuildBriefBlock(st.In.Brief),
				"prior_block": buildPriorBlock(st.In.PriorOutputs),
			}
			msgs, err := tpl.Format(ctx, vars)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName(step+".template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *siteStepChainState) (*siteStepChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildSiteStepModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"step", st.In.Step,
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildSiteStepModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName(step+".llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *siteStepChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName(step+".finalize"),
	)

	return chain.Compile(ctx)
}

func stepPromptID(step string) (workflowprompt.PromptID, error) {
	switch step {
	case "structure":
		return workflowprompt.PromptSiteStructureV1, nil
	case "seo":
		return workflowprompt.PromptSiteSEOV1, nil
	case "content":
		return workflowprompt.PromptSiteContentV1, nil
	case "design":
		return workflowprompt.PromptSiteDesignV1, nil
	default:
		return "", fmt.Errorf("unknown generation step: %s", step)
	}
}

// BuildBriefBlock 将客户需求拼装为提示词文本块
func BuildBriefBlock(brief wfmodel.SiteBrief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", strings.TrimSpace(brief.CompanyName))
	if desc := strings.TrimSpace(brief.GoalDescription); desc != "" {
		fmt.Fprintf(&b, "Description: %s\n", wfnode.TruncateByRunes(desc, 4000))
	}
	if len(brief.Goals) > 0 {
		fmt.Fprintf(&b, "Goals: %s\n", strings.Join(brief.Goals, ", "))
	}
	if s := strings.TrimSpace(brief.StylePreference); s != "" {
		fmt.Fprintf(&b, "Style preference: %s\n", s)
	}
	if s := strings.TrimSpace(brief.BrandHints); s != "" {
		fmt.Fprintf(&b, "Brand hints: %s\n", s)
	}
	if s := strings.TrimSpace(brief.CompetitorHints); s != "" {
		fmt.Fprintf(&b, "Competitor hints: %s\n", s)
	}
	return strings.TrimSpace(b.String())
}

func buildPriorBlock(prior map[string]json.RawMessage) string {
	if len(prior) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, step := range []string{"structure", "seo", "content"} {
		raw, ok := prior[step]
		if !ok || len(raw) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", step, wfnode.TruncateByRunes(string(raw), 8000))
	}
	return strings.TrimSpace(b.String())
}

func buildSiteStepModelOptions(in *wfmodel.SiteStepInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}

	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "site_" + in.Step,
					"strict": false,
					"schema": siteStepJSONSchema(in.Step),
				},
			},
		}))
	}

	return opts
}

func siteStepJSONSchema(step string) map[string]any {
	switch step {
	case "structure":
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"site_name", "pages"},
			"properties": map[string]any{
				"site_name": map[string]any{"type": "string"},
				"tagline":   map[string]any{"type": "string"},
				"pages": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []any{"key", "title", "slug"},
						"properties": map[string]any{
							"key":   map[string]any{"type": "string"},
							"title": map[string]any{"type": "string"},
							"slug":  map[string]any{"type": "string"},
							"sections": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type":                 "object",
									"additionalProperties": false,
									"required":             []any{"key", "kind"},
									"properties": map[string]any{
										"key":      map[string]any{"type": "string"},
										"kind":     map[string]any{"type": "string"},
										"headline": map[string]any{"type": "string"},
									},
								},
							},
						},
					},
				},
			},
		}
	case "seo":
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"site_title", "site_description"},
			"properties": map[string]any{
				"site_title":       map[string]any{"type": "string"},
				"site_description": map[string]any{"type": "string"},
				"keywords": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"page_meta": map[string]any{
					"type": "object",
					"additionalProperties": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []any{"title", "description"},
						"properties": map[string]any{
							"title":       map[string]any{"type": "string"},
							"description": map[string]any{"type": "string"},
							"keywords": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		}
	case "content":
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"blocks"},
			"properties": map[string]any{
				"blocks": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []any{"page_key", "section_key", "body"},
						"properties": map[string]any{
							"page_key":    map[string]any{"type": "string"},
							"section_key": map[string]any{"type": "string"},
							"heading":     map[string]any{"type": "string"},
							"body":        map[string]any{"type": "string"},
						},
					},
				},
			},
		}
	case "design":
		return map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []any{"color_scheme"},
			"properties": map[string]any{
				"color_scheme": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"primary"},
					"properties": map[string]any{
						"primary":    map[string]any{"type": "string"},
						"secondary":  map[string]any{"type": "string"},
						"accent":     map[string]any{"type": "string"},
						"background": map[string]any{"type": "string"},
						"text":       map[string]any{"type": "string"},
					},
				},
				"font_pairing": map[string]any{"type": "string"},
				"tone":         map[string]any{"type": "string"},
			},
		}
	default:
		return map[string]any{"type": "object"}
	}
}
