// Package entity 定义领域实体
package entity

import (
	"encoding/json"
)

// ArtifactSchemaVersion 当前 SiteArtifact 结构版本。
// 历史快照保留生成时的版本号，旧结构仍可解读。
const ArtifactSchemaVersion = 1

// PageSection 页面区块
type PageSection struct {
	Key      string `json:"key"`
	Kind     string `json:"kind"` // hero / features / about / testimonials / cta / contact ...
	Headline string `json:"headline,omitempty"`
}

// SitePage 站点页面
type SitePage struct {
	Key      string        `json:"key"`
	Title    string        `json:"title"`
	Slug     string        `json:"slug"`
	Sections []PageSection `json:"sections,omitempty"`
}

// SiteStructure 站点结构（structure 步骤产物）
type SiteStructure struct {
	SiteName string     `json:"site_name"`
	Tagline  string     `json:"tagline,omitempty"`
	Pages    []SitePage `json:"pages"`
}

// PageMeta 单页 SEO 元数据
type PageMeta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// SiteSEO SEO 元数据（seo 步骤产物）
type SiteSEO struct {
	SiteTitle       string              `json:"site_title"`
	SiteDescription string              `json:"site_description"`
	Keywords        []string            `json:"keywords,omitempty"`
	PageMeta        map[string]PageMeta `json:"page_meta,omitempty"` // 按页面 key 索引
}

// ContentBlock 文案内容块
type ContentBlock struct {
	PageKey    string `json:"page_key"`
	SectionKey string `json:"section_key"`
	Heading    string `json:"heading,omitempty"`
	Body       string `json:"body"`
}

// SiteContent 文案内容（content 步骤产物）
type SiteContent struct {
	Blocks []ContentBlock `json:"blocks"`
}

// ColorScheme 配色方案
type ColorScheme struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty"`
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
}

// SiteDesign 设计令牌（design 步骤产物，可省略）
type SiteDesign struct {
	ColorScheme ColorScheme `json:"color_scheme"`
	FontPairing string      `json:"font_pairing,omitempty"`
	Tone        string      `json:"tone,omitempty"`
}

// SiteArtifact 生成流水线的最终产物：显式的分字段结构而非序列化字符串，
// 保证历史快照在结构演进后仍可按 SchemaVersion 解读。
type SiteArtifact struct {
	SchemaVersion int            `json:"schema_version"`
	Structure     *SiteStructure `json:"structure,omitempty"`
	SEO           *SiteSEO       `json:"seo,omitempty"`
	Content       *SiteContent   `json:"content,omitempty"`
	Design        *SiteDesign    `json:"design,omitempty"`
}

// NewSiteArtifact 创建空产物
func NewSiteArtifact() *SiteArtifact {
	return &SiteArtifact{SchemaVersion: ArtifactSchemaVersion}
}

// Clone 深拷贝产物（快照写入与恢复时使用，避免共享内部切片）
func (a *SiteArtifact) Clone() *SiteArtifact {
	if a == nil {
		return nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil
	}
	var out SiteArtifact
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}

// IsComplete 检查产物是否满足必须字段（design 可缺省）
func (a *SiteArtifact) IsComplete() bool {
	if a == nil {
		return false
	}
	return a.Structure != nil && len(a.Structure.Pages) > 0 &&
		a.SEO != nil && a.SEO.SiteTitle != "" &&
		a.Content != nil && len(a.Content.Blocks) > 0
}
