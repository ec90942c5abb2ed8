package agent

import (
	"github.com/BaSui01/policyswarm/llm"
	"github.com/BaSui01/policyswarm/types"
	"go.uber.org/zap"
)

// Role 区分根角色、评估角色与普通角色
type Role string

const (
	RoleRoot      Role = "root"
	RoleEvaluator Role = "evaluator"
	RolePersona   Role = "persona"
)

// Agent 是一个已构建的角色，创建后不可变
type Agent struct {
	name         string
	instructions string
	model        ModelConfig
	role         Role
	transfers    []string
	tools        []llm.ToolSchema
}

func (a *Agent) Name() string         { return a.name }
func (a *Agent) Instructions() string { return a.instructions }
func (a *Agent) Model() ModelConfig   { return a.model }
func (a *Agent) Role() Role           { return a.role }

// AllowedTransfers 返回允许转交的目标角色（按目录顺序）
func (a *Agent) AllowedTransfers() []string {
	return append([]string(nil), a.transfers...)
}

// CanTransferTo 判断是否允许转交给 target
func (a *Agent) CanTransferTo(target string) bool {
	for _, t := range a.transfers {
		if t == target {
			return true
		}
	}
	return false
}

// Tools 返回暴露给补全服务的工具定义
func (a *Agent) Tools() []llm.ToolSchema {
	return append([]llm.ToolSchema(nil), a.tools...)
}

// HasTool 判断角色是否暴露了指定工具
func (a *Agent) HasTool(name string) bool {
	for _, t := range a.tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Registry 持有启动时构建的全部角色，运行期间只读
type Registry struct {
	agents    map[string]*Agent
	order     []string
	bySlug    map[string]string
	root      *Agent
	evaluator *Agent
	logger    *zap.Logger
}

// Option 配置 Registry
type Option func(*registryOptions)

type registryOptions struct {
	model     ModelConfig
	root      string
	evaluator string
	logger    *zap.Logger
}

// WithModelConfig 设置所有角色共享的模型参数
func WithModelConfig(m ModelConfig) Option {
	return func(o *registryOptions) { o.model = m }
}

// WithRootName 覆盖根角色名称
func WithRootName(name string) Option {
	return func(o *registryOptions) { o.root = name }
}

// WithEvaluatorName 覆盖评估角色名称
func WithEvaluatorName(name string) Option {
	return func(o *registryOptions) { o.evaluator = name }
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(o *registryOptions) { o.logger = logger }
}

// NewRegistry 为每条定义构建一个 Agent。
// 空名称、重名、工具名冲突或缺少根/评估角色都返回 ConfigurationError。
func NewRegistry(defs []Definition, opts ...Option) (*Registry, error) {
	o := registryOptions{
		model:     DefaultModelConfig(),
		root:      RootName,
		evaluator: EvaluatorName,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	r := &Registry{
		agents: make(map[string]*Agent, len(defs)),
		order:  make([]string, 0, len(defs)),
		bySlug: make(map[string]string, len(defs)),
		logger: o.logger.With(zap.String("component", "agent_registry")),
	}

	for i, d := range defs {
		if d.Name == "" {
			return nil, types.NewConfigurationError("persona #%d has an empty name", i+1)
		}
		if _, dup := r.agents[d.Name]; dup {
			return nil, types.NewConfigurationError("duplicate persona name %q", d.Name)
		}
		slug := ToolSlug(d.Name)
		if slug == "" {
			return nil, types.NewConfigurationError("persona name %q has no usable characters", d.Name)
		}
		if other, clash := r.bySlug[slug]; clash {
			return nil, types.NewConfigurationError("persona names %q and %q map to the same tool name %q",
				other, d.Name, TransferToolName(d.Name))
		}
		r.bySlug[slug] = d.Name
		r.order = append(r.order, d.Name)
		r.agents[d.Name] = &Agent{
			name:         d.Name,
			instructions: d.Instructions,
			model:        o.model,
			role:         RolePersona,
		}
	}

	root, ok := r.agents[o.root]
	if !ok {
		return nil, types.NewConfigurationError("required root persona %q is missing", o.root)
	}
	evaluator, ok := r.agents[o.evaluator]
	if !ok {
		return nil, types.NewConfigurationError("required evaluator persona %q is missing", o.evaluator)
	}
	if root == evaluator {
		return nil, types.NewConfigurationError("root and evaluator must be different personas")
	}
	root.role = RoleRoot
	evaluator.role = RoleEvaluator
	r.root, r.evaluator = root, evaluator

	for _, name := range r.order {
		a := r.agents[name]
		if a.role == RoleEvaluator {
			a.tools = []llm.ToolSchema{evaluateMetricsTool()}
			continue
		}
		for _, other := range r.order {
			if other == name {
				continue
			}
			a.transfers = append(a.transfers, other)
			a.tools = append(a.tools, transferTool(other))
		}
		a.tools = append(a.tools, evaluateFrameworkTool(), updateFrameworkTool())
	}

	r.logger.Info("personas registered",
		zap.Int("count", len(r.order)),
		zap.String("root", root.name),
		zap.String("evaluator", evaluator.name),
		zap.String("model", o.model.Model))
	return r, nil
}

// Get 按名称查找角色
func (r *Registry) Get(name string) (*Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// ByTransferTool 根据 transfer_to_<slug> 工具名查找目标角色
func (r *Registry) ByTransferTool(tool string) (*Agent, bool) {
	if !IsTransferTool(tool) {
		return nil, false
	}
	name, ok := r.bySlug[tool[len(TransferToolPrefix):]]
	if !ok {
		return nil, false
	}
	return r.agents[name], true
}

// Root 返回根角色
func (r *Registry) Root() *Agent { return r.root }

// Evaluator 返回评估角色
func (r *Registry) Evaluator() *Agent { return r.evaluator }

// Names 返回按目录顺序排列的角色名
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len 返回角色数量
func (r *Registry) Len() int { return len(r.order) }
