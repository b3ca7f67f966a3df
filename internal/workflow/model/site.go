package model

import (
	"encoding/json"
	"time"
)

// SiteBrief 客户输入的建站需求摘要，作为所有步骤的公共上下文
type SiteBrief struct {
	CompanyName     string   `json:"company_name"`
	GoalDescription string   `json:"goal_description"`
	Goals           []string `json:"goals,omitempty"`
	StylePreference string   `json:"style_preference,omitempty"`
	BrandHints      string   `json:"brand_hints,omitempty"`
	CompetitorHints string   `json:"competitor_hints,omitempty"`
}

// SiteStepInput 单个生成步骤的输入。
// PriorOutputs 携带已完成步骤的原始 JSON 输出，供后续步骤引用。
type SiteStepInput struct {
	Step  string
	Brief SiteBrief

	PriorOutputs map[string]json.RawMessage

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// ClarifyInput 澄清评估的输入
type ClarifyInput struct {
	Brief SiteBrief

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// ClarifyOutput 澄清评估的输出：描述是否充分，不充分时附带追问问题
type ClarifyOutput struct {
	Sufficient bool     `json:"sufficient"`
	Questions  []string `json:"questions,omitempty"`
	Reason     string   `json:"reason,omitempty"`

	Meta LLMUsageMeta `json:"-"`
}

// LLMUsageMeta LLM 调用元数据
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}
