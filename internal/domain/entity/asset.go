// Package entity 定义领域实体
package entity

import (
	"time"
)

// UploadedAsset 客户上传的品牌资产（logo、参考图等）
type UploadedAsset struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID string    `json:"project_id" gorm:"type:uuid;index;not null"`
	FileName  string    `json:"file_name" gorm:"type:varchar(255);not null"`
	URL       string    `json:"url" gorm:"type:varchar(512);not null"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (UploadedAsset) TableName() string {
	return "uploaded_assets"
}
