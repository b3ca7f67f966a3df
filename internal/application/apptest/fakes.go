// Package apptest 提供应用层测试用的内存仓储与确定性端口假实现。
// 行为与 postgres 实现保持一致：不存在返回 (nil, nil)，读写都做拷贝。
package apptest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	wfmodel "sitepilot-api/internal/workflow/model"
)

// Tx 直通事务：直接执行回调，不做回滚模拟
type Tx struct{}

// WithTransaction 执行回调
func (Tx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// UserRepo 内存用户仓储
type UserRepo struct {
	mu    sync.Mutex
	items map[string]*entity.User
}

// NewUserRepo 创建内存用户仓储
func NewUserRepo() *UserRepo {
	return &UserRepo{items: make(map[string]*entity.User)}
}

// Create 写入用户
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.items[user.ID] = &cp
	return nil
}

// GetByID 返回用户；不存在时返回 (nil, nil)
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

// GetByEmail 按邮箱返回用户；不存在时返回 (nil, nil)
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.items {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

// Update 覆盖用户
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[user.ID]; !ok {
		return fmt.Errorf("user %s not found", user.ID)
	}
	cp := *user
	r.items[user.ID] = &cp
	return nil
}

// ProjectRepo 内存项目仓储
type ProjectRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Project
}

// NewProjectRepo 创建内存项目仓储
func NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{items: make(map[string]*entity.Project)}
}

// Create 写入项目，必要时分配 ID
func (r *ProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	cp := *project
	r.items[project.ID] = &cp
	return nil
}

// GetByID 返回项目的拷贝；不存在时返回 (nil, nil)
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// Update 整体覆盖项目
func (r *ProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[project.ID]; !ok {
		return fmt.Errorf("project %s not found", project.ID)
	}
	cp := *project
	r.items[project.ID] = &cp
	return nil
}

// Delete 删除项目
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// List 按过滤条件列出项目
func (r *ProjectRepo) List(ctx context.Context, filter *repository.ProjectFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Project
	for _, p := range r.items {
		if filter != nil {
			if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
				continue
			}
			if filter.Status != "" && p.Status != filter.Status {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return repository.NewPagedResult(out, int64(len(out)), pagination), nil
}

// ListByOwner 列出客户的项目
func (r *ProjectRepo) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return r.List(ctx, &repository.ProjectFilter{OwnerID: ownerID}, pagination)
}

// RunRepo 内存运行仓储
type RunRepo struct {
	mu    sync.Mutex
	items map[string]*entity.GenerationRun
}

// NewRunRepo 创建内存运行仓储
func NewRunRepo() *RunRepo {
	return &RunRepo{items: make(map[string]*entity.GenerationRun)}
}

func cloneRun(run *entity.GenerationRun) *entity.GenerationRun {
	cp := *run
	cp.Steps = append([]entity.GenerationStep(nil), run.Steps...)
	return &cp
}

// Create 写入运行
func (r *RunRepo) Create(ctx context.Context, run *entity.GenerationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	r.items[run.ID] = cloneRun(run)
	return nil
}

// GetByID 返回运行的拷贝；不存在时返回 (nil, nil)
func (r *RunRepo) GetByID(ctx context.Context, id string) (*entity.GenerationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return cloneRun(run), nil
}

// Update 覆盖运行
func (r *RunRepo) Update(ctx context.Context, run *entity.GenerationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[run.ID]; !ok {
		return fmt.Errorf("run %s not found", run.ID)
	}
	r.items[run.ID] = cloneRun(run)
	return nil
}

// ListByProject 项目运行历史，按创建时间降序
func (r *RunRepo) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationRun], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.GenerationRun
	for _, run := range r.items {
		if run.ProjectID == projectID {
			out = append(out, cloneRun(run))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return repository.NewPagedResult(out, int64(len(out)), pagination), nil
}

// GetActiveByProject 返回项目 pending/running 的运行；没有时返回 (nil, nil)
func (r *RunRepo) GetActiveByProject(ctx context.Context, projectID string) (*entity.GenerationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.items {
		if run.ProjectID == projectID &&
			(run.Status == entity.RunStatusPending || run.Status == entity.RunStatusRunning) {
			return cloneRun(run), nil
		}
	}
	return nil, nil
}

// SnapshotRepo 内存快照仓储。和数据库一样以唯一索引兜底版本号冲突。
type SnapshotRepo struct {
	mu    sync.Mutex
	items []*entity.VersionSnapshot
}

// NewSnapshotRepo 创建内存快照仓储
func NewSnapshotRepo() *SnapshotRepo {
	return &SnapshotRepo{}
}

// Create 追加快照，重复的 (project, version) 报错
func (r *SnapshotRepo) Create(ctx context.Context, snapshot *entity.VersionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.ProjectID == snapshot.ProjectID && s.VersionNumber == snapshot.VersionNumber {
			return fmt.Errorf("duplicate version %d for project %s", snapshot.VersionNumber, snapshot.ProjectID)
		}
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	cp := *snapshot
	cp.Artifact = snapshot.Artifact.Clone()
	r.items = append(r.items, &cp)
	return nil
}

// GetLatestVersionNumber 项目当前最大版本号，无快照时为 0
func (r *SnapshotRepo) GetLatestVersionNumber(ctx context.Context, projectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := 0
	for _, s := range r.items {
		if s.ProjectID == projectID && s.VersionNumber > latest {
			latest = s.VersionNumber
		}
	}
	return latest, nil
}

// GetByProjectVersion 按版本号取快照；不存在时返回 (nil, nil)
func (r *SnapshotRepo) GetByProjectVersion(ctx context.Context, projectID string, versionNumber int) (*entity.VersionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.ProjectID == projectID && s.VersionNumber == versionNumber {
			cp := *s
			cp.Artifact = s.Artifact.Clone()
			return &cp, nil
		}
	}
	return nil, nil
}

// ListByProject 按版本号降序列出快照
func (r *SnapshotRepo) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.VersionSnapshot], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.VersionSnapshot
	for _, s := range r.items {
		if s.ProjectID == projectID {
			cp := *s
			cp.Artifact = s.Artifact.Clone()
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return repository.NewPagedResult(out, int64(len(out)), pagination), nil
}

// ClarificationRepo 内存澄清轮次仓储
type ClarificationRepo struct {
	mu    sync.Mutex
	items map[string]*entity.ClarificationRound
}

// NewClarificationRepo 创建内存澄清轮次仓储
func NewClarificationRepo() *ClarificationRepo {
	return &ClarificationRepo{items: make(map[string]*entity.ClarificationRound)}
}

func cloneRound(round *entity.ClarificationRound) *entity.ClarificationRound {
	cp := *round
	cp.Questions = append([]string(nil), round.Questions...)
	cp.Answers = append([]string(nil), round.Answers...)
	return &cp
}

// Create 写入轮次
func (r *ClarificationRepo) Create(ctx context.Context, round *entity.ClarificationRound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	r.items[round.ID] = cloneRound(round)
	return nil
}

// GetByID 返回轮次；不存在时返回 (nil, nil)
func (r *ClarificationRepo) GetByID(ctx context.Context, id string) (*entity.ClarificationRound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	round, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return cloneRound(round), nil
}

// GetOpenByProject 返回项目未合并的轮次；没有时返回 (nil, nil)
func (r *ClarificationRepo) GetOpenByProject(ctx context.Context, projectID string) (*entity.ClarificationRound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, round := range r.items {
		if round.ProjectID == projectID && round.Status != entity.ClarificationStatusMerged {
			return cloneRound(round), nil
		}
	}
	return nil, nil
}

// Update 覆盖轮次
func (r *ClarificationRepo) Update(ctx context.Context, round *entity.ClarificationRound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[round.ID]; !ok {
		return fmt.Errorf("clarification round %s not found", round.ID)
	}
	r.items[round.ID] = cloneRound(round)
	return nil
}

// RevisionRepo 内存修订请求仓储
type RevisionRepo struct {
	mu    sync.Mutex
	items map[string]*entity.RevisionRequest
}

// NewRevisionRepo 创建内存修订请求仓储
func NewRevisionRepo() *RevisionRepo {
	return &RevisionRepo{items: make(map[string]*entity.RevisionRequest)}
}

// Create 写入修订请求
func (r *RevisionRepo) Create(ctx context.Context, req *entity.RevisionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	cp := *req
	r.items[req.ID] = &cp
	return nil
}

// GetByID 返回修订请求；不存在时返回 (nil, nil)
func (r *RevisionRepo) GetByID(ctx context.Context, id string) (*entity.RevisionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

// Update 覆盖修订请求
func (r *RevisionRepo) Update(ctx context.Context, req *entity.RevisionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[req.ID]; !ok {
		return fmt.Errorf("revision %s not found", req.ID)
	}
	cp := *req
	r.items[req.ID] = &cp
	return nil
}

// ListTriageOrder 按分诊顺序列出：状态序、优先级序、创建时间升序
func (r *RevisionRepo) ListTriageOrder(ctx context.Context, filter *repository.RevisionFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.RevisionRequest], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.RevisionRequest
	for _, req := range r.items {
		if filter != nil {
			if filter.ProjectID != "" && req.ProjectID != filter.ProjectID {
				continue
			}
			if filter.ClientID != "" && req.ClientID != filter.ClientID {
				continue
			}
			if filter.Status != "" && req.Status != filter.Status {
				continue
			}
		}
		cp := *req
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := entity.StatusRank(out[i].Status), entity.StatusRank(out[j].Status)
		if si != sj {
			return si < sj
		}
		pi, pj := entity.PriorityRank(out[i].Priority), entity.PriorityRank(out[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return repository.NewPagedResult(out, int64(len(out)), pagination), nil
}

// TaskRepo 内存建站任务仓储。保留插入顺序作为创建时间相同时的决胜键。
type TaskRepo struct {
	mu    sync.Mutex
	order []string
	items map[string]*entity.BuildTask
}

// NewTaskRepo 创建内存任务仓储
func NewTaskRepo() *TaskRepo {
	return &TaskRepo{items: make(map[string]*entity.BuildTask)}
}

// Create 写入任务
func (r *TaskRepo) Create(ctx context.Context, task *entity.BuildTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	cp := *task
	r.items[task.ID] = &cp
	r.order = append(r.order, task.ID)
	return nil
}

// GetByID 返回任务；不存在时返回 (nil, nil)
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.BuildTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *task
	return &cp, nil
}

// Update 覆盖任务
func (r *TaskRepo) Update(ctx context.Context, task *entity.BuildTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[task.ID]; !ok {
		return fmt.Errorf("task %s not found", task.ID)
	}
	cp := *task
	r.items[task.ID] = &cp
	return nil
}

// ListByProject 项目任务列表，按创建时间升序
func (r *TaskRepo) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.BuildTask], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.BuildTask
	for _, id := range r.order {
		task := r.items[id]
		if task.ProjectID == projectID {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return repository.NewPagedResult(out, int64(len(out)), pagination), nil
}

// EnqueuedRun 记录一次入队调用
type EnqueuedRun struct {
	RunID       string
	ProjectID   string
	InitiatedBy string
	Regenerate  bool
}

// Enqueuer 记录式入队假实现
type Enqueuer struct {
	mu    sync.Mutex
	Err   error
	Calls []EnqueuedRun
}

// EnqueueRun 记录调用，按 Err 返回
func (e *Enqueuer) EnqueueRun(ctx context.Context, runID, projectID, initiatedBy string, regenerate bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Calls = append(e.Calls, EnqueuedRun{
		RunID:       runID,
		ProjectID:   projectID,
		InitiatedBy: initiatedBy,
		Regenerate:  regenerate,
	})
	return nil
}

// StatusChange 记录一次状态变更通知
type StatusChange struct {
	ProjectID string
	From      entity.ProjectStatus
	To        entity.ProjectStatus
	Event     string
}

// Notifier 记录式通知假实现
type Notifier struct {
	mu     sync.Mutex
	Events []StatusChange
}

// StatusChanged 记录通知
func (n *Notifier) StatusChanged(ctx context.Context, project *entity.Project, from, to entity.ProjectStatus, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, StatusChange{
		ProjectID: project.ID,
		From:      from,
		To:        to,
		Event:     event,
	})
}

// StepGen 确定性步骤生成器：按步骤名返回预置输出，可指定失败步骤
type StepGen struct {
	Outputs  map[entity.StepName]json.RawMessage
	FailStep entity.StepName
	FailErr  error

	mu    sync.Mutex
	Calls []entity.StepName
}

// GenerateStep 返回预置输出或预置错误
func (g *StepGen) GenerateStep(ctx context.Context, step entity.StepName, brief wfmodel.SiteBrief, prior map[string]json.RawMessage) (json.RawMessage, error) {
	g.mu.Lock()
	g.Calls = append(g.Calls, step)
	g.mu.Unlock()
	if g.FailStep == step {
		if g.FailErr != nil {
			return nil, g.FailErr
		}
		return nil, fmt.Errorf("step %s failed", step)
	}
	out, ok := g.Outputs[step]
	if !ok {
		return nil, fmt.Errorf("no output configured for step %s", step)
	}
	return out, nil
}

// Evaluator 确定性澄清评估器
type Evaluator struct {
	Out *wfmodel.ClarifyOutput
	Err error
}

// Evaluate 返回预置结果
func (e *Evaluator) Evaluate(ctx context.Context, brief wfmodel.SiteBrief) (*wfmodel.ClarifyOutput, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Out, nil
}

// ValidStepOutputs 四个步骤的合法输出样本，满足全部必须字段
func ValidStepOutputs() map[entity.StepName]json.RawMessage {
	return map[entity.StepName]json.RawMessage{
		entity.StepStructure: json.RawMessage(`{
			"site_name": "Acme Plumbing",
			"tagline": "Fast and reliable",
			"pages": [
				{"key": "home", "title": "Home", "slug": "/", "sections": [{"key": "hero", "kind": "hero"}]},
				{"key": "contact", "title": "Contact", "slug": "/contact", "sections": [{"key": "form", "kind": "contact"}]}
			]
		}`),
		entity.StepSEO: json.RawMessage(`{
			"site_title": "Acme Plumbing | Emergency Repairs",
			"site_description": "24/7 plumbing services in your area.",
			"keywords": ["plumbing", "emergency"]
		}`),
		entity.StepContent: json.RawMessage(`{
			"blocks": [
				{"page_key": "home", "section_key": "hero", "heading": "We fix leaks", "body": "Call us any time."},
				{"page_key": "contact", "section_key": "form", "body": "Reach out via the form below."}
			]
		}`),
		entity.StepDesign: json.RawMessage(`{
			"color_scheme": {"primary": "#0a5c9e", "secondary": "#f4f4f4"},
			"font_pairing": "Inter / Lora",
			"tone": "professional"
		}`),
	}
}

// SeedProject 写入一个处于指定状态的项目并返回其 ID
func SeedProject(t interface{ Fatalf(string, ...any) }, repo *ProjectRepo, ownerID string, status entity.ProjectStatus) *entity.Project {
	project := entity.NewProject(ownerID, "Acme Plumbing")
	project.GoalDescription = "A website for a local plumbing business"
	project.Goals = []entity.GoalTag{entity.GoalLeads}
	project.Status = status
	project.CreatedAt = time.Now()
	if err := repo.Create(context.Background(), project); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}
