// Package entity 定义领域实体
package entity

import (
	"time"
)

// UserRole 用户角色
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleAdmin  UserRole = "admin"
)

// User 平台用户实体。client 拥有项目并提交审批/修订；admin 负责分诊与上线操作。
type User struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	DisplayName  string    `json:"display_name,omitempty" gorm:"type:varchar(255)"`
	Role         UserRole  `json:"role" gorm:"type:varchar(20);default:'client'"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 检查是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
