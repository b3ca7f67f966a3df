// Package entity 定义领域实体
package entity

import (
	"time"
)

// VersionSnapshot 产物的不可变快照。只追加、永不更新；
// version_number 按项目单调递增、从 1 起无空洞。
type VersionSnapshot struct {
	ID                string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID         string        `json:"project_id" gorm:"type:uuid;index:idx_snapshot_project_version,unique;not null"`
	VersionNumber     int           `json:"version_number" gorm:"index:idx_snapshot_project_version,unique;not null"`
	Artifact          *SiteArtifact `json:"artifact" gorm:"type:jsonb;serializer:json;not null"`
	ChangeDescription string        `json:"change_description,omitempty" gorm:"type:text"`
	CreatedBy         string        `json:"created_by" gorm:"type:uuid"`
	CreatedAt         time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (VersionSnapshot) TableName() string {
	return "version_snapshots"
}

// NewVersionSnapshot 创建快照，产物做深拷贝以保证不可变
func NewVersionSnapshot(projectID string, versionNumber int, artifact *SiteArtifact, description, createdBy string) *VersionSnapshot {
	return &VersionSnapshot{
		ProjectID:         projectID,
		VersionNumber:     versionNumber,
		Artifact:          artifact.Clone(),
		ChangeDescription: description,
		CreatedBy:         createdBy,
		CreatedAt:         time.Now(),
	}
}
