// Package storage 提供上传文件的存储实现
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"sitepilot-api/internal/config"
)

var tracer = otel.Tracer("storage")

// ObjectStore 文件存储接口
type ObjectStore interface {
	// Save 保存上传内容，返回可公开访问的 URL 与写入字节数
	Save(ctx context.Context, projectID, fileName string, r io.Reader) (url string, size int64, err error)
}

// LocalStore 本地磁盘存储，按项目分目录存放
type LocalStore struct {
	dir           string
	publicBaseURL string
	maxSizeBytes  int64
}

// NewLocalStore 创建本地存储
func NewLocalStore(cfg *config.UploadsConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &LocalStore{
		dir:           cfg.Dir,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxSizeBytes:  cfg.MaxSizeBytes,
	}, nil
}

// Save 保存上传内容。超过大小上限返回错误，半写文件会被清理。
func (s *LocalStore) Save(ctx context.Context, projectID, fileName string, r io.Reader) (string, int64, error) {
	_, span := tracer.Start(ctx, "storage.LocalStore.Save")
	defer span.End()

	safeName := sanitizeFileName(fileName)
	if safeName == "" {
		return "", 0, fmt.Errorf("invalid file name: %q", fileName)
	}

	projectDir := filepath.Join(s.dir, projectID)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		span.RecordError(err)
		return "", 0, fmt.Errorf("failed to create project dir: %w", err)
	}

	storedName := uuid.NewString() + "_" + safeName
	dst := filepath.Join(projectDir, storedName)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		span.RecordError(err)
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	limit := s.maxSizeBytes
	if limit <= 0 {
		limit = 10 << 20
	}

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		span.RecordError(err)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	if n > limit {
		os.Remove(dst)
		return "", 0, fmt.Errorf("file exceeds max size of %d bytes", limit)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicBaseURL, projectID, storedName)
	return url, n, nil
}

// sanitizeFileName 去掉路径成分，只保留基础文件名
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
