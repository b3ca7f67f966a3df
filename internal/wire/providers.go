// Package wire 提供依赖注入配置
package wire

import (
	"github.com/google/wire"

	"sitepilot-api/internal/application/auth"
	"sitepilot-api/internal/application/buildtask"
	"sitepilot-api/internal/application/clarify"
	"sitepilot-api/internal/application/generation"
	"sitepilot-api/internal/application/lifecycle"
	"sitepilot-api/internal/application/pipeline"
	appproject "sitepilot-api/internal/application/project"
	"sitepilot-api/internal/application/revision"
	"sitepilot-api/internal/application/version"
	"sitepilot-api/internal/config"
	"sitepilot-api/internal/domain/repository"
	"sitepilot-api/internal/infrastructure/llm"
	"sitepilot-api/internal/infrastructure/messaging"
	"sitepilot-api/internal/infrastructure/notify"
	"sitepilot-api/internal/infrastructure/persistence/postgres"
	"sitepilot-api/internal/infrastructure/persistence/redis"
	"sitepilot-api/internal/infrastructure/storage"
	"sitepilot-api/internal/interfaces/http/handler"
	"sitepilot-api/internal/interfaces/http/middleware"
	"sitepilot-api/internal/interfaces/http/router"
	"sitepilot-api/internal/workflow/chain"
	workflowport "sitepilot-api/internal/workflow/port"
	"sitepilot-api/pkg/utils"
)

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient     *postgres.Client
	TxManager    *postgres.TxManager
	UserRepo     *postgres.UserRepository
	ProjectRepo  *postgres.ProjectRepository
	RunRepo      *postgres.RunRepository
	RevisionRepo *postgres.RevisionRepository
	TaskRepo     *postgres.TaskRepository
	SnapshotRepo *postgres.SnapshotRepository
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewProjectRepository,
	postgres.NewRunRepository,
	postgres.NewRevisionRepository,
	postgres.NewTaskRepository,
	postgres.NewSnapshotRepository,
	postgres.NewClarificationRepository,
	postgres.NewAssetRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.ProjectRepository), new(*postgres.ProjectRepository)),
	wire.Bind(new(repository.RunRepository), new(*postgres.RunRepository)),
	wire.Bind(new(repository.RevisionRepository), new(*postgres.RevisionRepository)),
	wire.Bind(new(repository.TaskRepository), new(*postgres.TaskRepository)),
	wire.Bind(new(repository.SnapshotRepository), new(*postgres.SnapshotRepository)),
	wire.Bind(new(repository.ClarificationRepository), new(*postgres.ClarificationRepository)),
	wire.Bind(new(repository.AssetRepository), new(*postgres.AssetRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	messaging.NewRunQueue,
	notify.NewStreamNotifier,
	wire.Bind(new(pipeline.RunEnqueuer), new(*messaging.RunQueue)),
	wire.Bind(new(lifecycle.Notifier), new(*notify.StreamNotifier)),
)

// WorkflowSet LLM 工作流提供者集合
var WorkflowSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewSiteStepChain,
	chain.NewClarifyChain,
	generation.NewLLMGenerator,
	wire.Bind(new(generation.StepGenerator), new(*generation.LLMGenerator)),
	wire.Bind(new(generation.ClarifyEvaluator), new(*generation.LLMGenerator)),
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	ProvideObjectStore,
	ProvideJWTManager,
	ProvidePipelineService,
	auth.NewService,
	appproject.NewService,
	lifecycle.NewService,
	clarify.NewService,
	revision.NewService,
	buildtask.NewService,
	version.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewHealthHandler,
	handler.NewProjectHandler,
	handler.NewClarifyHandler,
	handler.NewLifecycleHandler,
	handler.NewGenerationHandler,
	handler.NewRevisionHandler,
	handler.NewTaskHandler,
	handler.NewVersionHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideObjectStore 提供本地对象存储
func ProvideObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	return storage.NewLocalStore(&cfg.Uploads)
}

// ProvideJWTManager 提供 JWT 管理器
func ProvideJWTManager(cfg *config.Config) *utils.JWTManager {
	return utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
}

// ProvidePipelineService 提供生成流水线服务
func ProvidePipelineService(
	projects repository.ProjectRepository,
	runs repository.RunRepository,
	snapshots repository.SnapshotRepository,
	tx repository.Transactor,
	generator generation.StepGenerator,
	enqueuer pipeline.RunEnqueuer,
	notifier lifecycle.Notifier,
	cfg *config.Config,
) *pipeline.Service {
	return pipeline.NewService(projects, runs, snapshots, tx, generator, enqueuer, notifier,
		cfg.Pipeline.DesignStepEnabled)
}
