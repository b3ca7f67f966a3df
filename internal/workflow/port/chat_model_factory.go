package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 生成链对 ChatModel 的最小依赖，按 provider 名取模型。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
