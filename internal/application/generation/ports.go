// Package generation 封装对生成服务（LLM）的调用。
// 应用层只依赖这里的端口接口，测试中以确定性假实现替换。
package generation

import (
	"context"
	"encoding/json"

	"sitepilot-api/internal/domain/entity"
	wfmodel "sitepilot-api/internal/workflow/model"
)

// StepGenerator 执行一个命名生成步骤，返回该步骤的 JSON 输出
type StepGenerator interface {
	GenerateStep(ctx context.Context, step entity.StepName, brief wfmodel.SiteBrief, prior map[string]json.RawMessage) (json.RawMessage, error)
}

// ClarifyEvaluator 评估需求描述是否足以开始生成
type ClarifyEvaluator interface {
	Evaluate(ctx context.Context, brief wfmodel.SiteBrief) (*wfmodel.ClarifyOutput, error)
}

// BriefFromProject 从项目字段拼装生成用的需求摘要
func BriefFromProject(p *entity.Project) wfmodel.SiteBrief {
	goals := make([]string, 0, len(p.Goals))
	for _, g := range p.Goals {
		goals = append(goals, string(g))
	}
	return wfmodel.SiteBrief{
		CompanyName:     p.CompanyName,
		GoalDescription: p.GoalDescription,
		Goals:           goals,
		StylePreference: p.StylePreference,
		BrandHints:      p.BrandHints,
		CompetitorHints: p.CompetitorHints,
	}
}
