// Package lifecycle 实现项目生命周期状态机。
// status 的所有变更都必须经由这里的转移表，客户端与管理员的动作
// 一律不直接写状态字段。
package lifecycle

import (
	apperrors "sitepilot-api/pkg/errors"

	"sitepilot-api/internal/domain/entity"
)

// Event 生命周期事件
type Event string

const (
	// EventQuestionsNeeded 澄清门判定信息不足
	EventQuestionsNeeded Event = "questions_needed"
	// EventStartGeneration 澄清门判定信息充分，或全部问题已回答
	EventStartGeneration Event = "start_generation"
	// EventGenerationDone 流水线成功，产物已提交
	EventGenerationDone Event = "generation_done"
	// EventRequestChanges 客户在评审中请求修改，状态保持 review
	EventRequestChanges Event = "request_changes"
	// EventApprove 客户批准
	EventApprove Event = "approve"
	// EventGoLive 管理员提供上线地址
	EventGoLive Event = "go_live"
	// EventRegenerate 管理员显式触发重新生成
	EventRegenerate Event = "regenerate"
)

// transitions 合法转移表。表外的任何 (状态, 事件) 组合都是 InvalidTransition。
var transitions = map[entity.ProjectStatus]map[Event]entity.ProjectStatus{
	entity.ProjectStatusPending: {
		EventQuestionsNeeded: entity.ProjectStatusQuestions,
		EventStartGeneration: entity.ProjectStatusGenerating,
	},
	entity.ProjectStatusQuestions: {
		EventStartGeneration: entity.ProjectStatusGenerating,
	},
	entity.ProjectStatusGenerating: {
		EventGenerationDone: entity.ProjectStatusReview,
	},
	entity.ProjectStatusReview: {
		EventRequestChanges: entity.ProjectStatusReview,
		EventApprove:        entity.ProjectStatusApproved,
		EventRegenerate:     entity.ProjectStatusGenerating,
	},
	entity.ProjectStatusApproved: {
		EventGoLive: entity.ProjectStatusLive,
	},
}

// Next 计算事件驱动下的下一个状态。
// 非法组合返回 InvalidTransition 错误，绝不就近替换成合法转移。
func Next(current entity.ProjectStatus, event Event) (entity.ProjectStatus, error) {
	if edges, ok := transitions[current]; ok {
		if next, ok := edges[event]; ok {
			return next, nil
		}
	}
	return "", apperrors.New(apperrors.CodeInvalidTransition,
		"illegal status transition").
		WithDetail(string(current) + " + " + string(event))
}

// CanFire 判断事件在当前状态下是否可触发
func CanFire(current entity.ProjectStatus, event Event) bool {
	_, err := Next(current, event)
	return err == nil
}
