// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// ClarificationStatus 澄清轮次状态
type ClarificationStatus string

const (
	ClarificationStatusOpen     ClarificationStatus = "open"
	ClarificationStatusAnswered ClarificationStatus = "answered"
	ClarificationStatusMerged   ClarificationStatus = "merged"
)

// ClarificationQuestionCount 每轮固定问题数，少补多裁
const ClarificationQuestionCount = 5

// ClarificationRound 澄清轮次：pending 与 generating 之间的短暂存在，
// 答案合并进项目描述后即标记为 merged。
type ClarificationRound struct {
	ID        string              `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID string              `json:"project_id" gorm:"type:uuid;index;not null"`
	Questions []string            `json:"questions" gorm:"type:jsonb;serializer:json"`
	Answers   []string            `json:"answers,omitempty" gorm:"type:jsonb;serializer:json"`
	Status    ClarificationStatus `json:"status" gorm:"type:varchar(20);default:'open'"`
	CreatedAt time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (ClarificationRound) TableName() string {
	return "clarification_rounds"
}

// NewClarificationRound 创建澄清轮次，问题列表归一化为固定长度
func NewClarificationRound(projectID string, questions []string) *ClarificationRound {
	return &ClarificationRound{
		ProjectID: projectID,
		Questions: NormalizeQuestions(questions),
		Status:    ClarificationStatusOpen,
		CreatedAt: time.Now(),
	}
}

// NormalizeQuestions 将问题列表裁剪/补齐为固定的 5 条
func NormalizeQuestions(questions []string) []string {
	out := make([]string, 0, ClarificationQuestionCount)
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == ClarificationQuestionCount {
			break
		}
	}
	for len(out) < ClarificationQuestionCount {
		out = append(out, defaultQuestions[len(out)%len(defaultQuestions)])
	}
	return out
}

// 补齐用的兜底问题，保证轮次总是恰好 5 条
var defaultQuestions = []string{
	"What products or services does your business offer?",
	"Who is your target audience?",
	"What action should a visitor take on your website?",
	"Do you have existing brand colors or a logo?",
	"Are there competitor websites you like or dislike?",
}

// AllAnswered 是否所有问题都已回答
func (r *ClarificationRound) AllAnswered() bool {
	if len(r.Answers) != len(r.Questions) {
		return false
	}
	for _, a := range r.Answers {
		if strings.TrimSpace(a) == "" {
			return false
		}
	}
	return true
}

// MergedDescription 将问答对按提问顺序追加到原描述之后
func (r *ClarificationRound) MergedDescription(base string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(base))
	for i, q := range r.Questions {
		if i >= len(r.Answers) {
			break
		}
		b.WriteString("\n\nQ: ")
		b.WriteString(q)
		b.WriteString("\nA: ")
		b.WriteString(strings.TrimSpace(r.Answers[i]))
	}
	return b.String()
}
