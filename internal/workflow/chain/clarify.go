package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

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

// ClarifyChain 需求充分性评估链。输出结构化判定与追问问题。
type ClarifyChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.ClarifyInput, *wfmodel.ClarifyOutput]
	chainErr  error
}

func NewClarifyChain(factory workflowport.ChatModelFactory) *ClarifyChain {
	return &ClarifyChain{factory: factory}
}

func (c *ClarifyChain) Invoke(ctx context.Context, in *wfmodel.ClarifyInput) (*wfmodel.ClarifyOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type clarifyChainState struct {
	In       *wfmodel.ClarifyInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *ClarifyChain) getChain() (compose.Runnable[*wfmodel.ClarifyInput, *wfmodel.ClarifyOutput], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *ClarifyChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.ClarifyInput, *wfmodel.ClarifyOutput], error) {
	chain := compose.NewChain[*wfmodel.ClarifyInput, *wfmodel.ClarifyOutput]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, in *wfmodel.ClarifyInput) (*clarifyChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptClarifyV1)
			if err != nil {
				return nil, err
			}
			msgs, err := tpl.Format(ctx, map[string]any{
				"brief_block": BuildBriefBlock(in.Brief),
			})
			if err != nil {
				return nil, err
			}
			return &clarifyChainState{In: in, Messages: msgs}, nil
		}),
		compose.WithNodeName("clarify.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *clarifyChainState) (*clarifyChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}

			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildClarifyModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildClarifyModelOptions(st.In, false)...)
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
		compose.WithNodeName("clarify.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *clarifyChainState) (*wfmodel.ClarifyOutput, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			raw := wfnode.ExtractJSONObject(st.OutMsg.Content)
			var out wfmodel.ClarifyOutput
			if err := json.Unmarshal([]byte(raw), &out); err != nil {
				return nil, fmt.Errorf("failed to parse clarify output: %w", err)
			}
			out.Meta = wfmodel.LLMUsageMeta{
				Provider:    strings.TrimSpace(st.In.Provider),
				Model:       strings.TrimSpace(st.In.Model),
				GeneratedAt: time.Now(),
			}
			if st.OutMsg.ResponseMeta != nil && st.OutMsg.ResponseMeta.Usage != nil {
				out.Meta.PromptTokens = st.OutMsg.ResponseMeta.Usage.PromptTokens
				out.Meta.CompletionTokens = st.OutMsg.ResponseMeta.Usage.CompletionTokens
			}
			return &out, nil
		}),
		compose.WithNodeName("clarify.finalize"),
	)

	return chain.Compile(ctx)
}

func buildClarifyModelOptions(in *wfmodel.ClarifyInput, enableSchema bool) []model.Option {
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
					"name":   "clarify",
					"strict": false,
					"schema": clarifyJSONSchema(),
				},
			},
		}))
	}

	return opts
}

func clarifyJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"sufficient", "questions"},
		"properties": map[string]any{
			"sufficient": map[string]any{"type": "boolean"},
			"questions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"reason": map[string]any{"type": "string"},
		},
	}
}
