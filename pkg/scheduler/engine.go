// Package scheduler 排班求解引擎门面
//
// 引擎把一次完整求解串成固定流水线：校验 → 建索引 → 建模 →
// 求解 → 解码 → 审计 → 组装。引擎本身无状态，多个求解可以
// 并发进行，互不干扰。
package scheduler

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/internal/metrics"
	"github.com/zhiban/zhiban/pkg/assembler"
	"github.com/zhiban/zhiban/pkg/availability"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/solver"
	"github.com/zhiban/zhiban/pkg/scheduler/strategy"
	"github.com/zhiban/zhiban/pkg/validator"
)

// Engine 排班求解引擎
type Engine struct {
	solver          solver.Solver
	assembler       *assembler.Assembler
	problemCheck    *validator.ProblemValidator
	log             *logger.RosterLogger
	defaults        model.Params
	acceptIncumbent bool
	verbose         bool
	metricsOn       bool
}

// Option 引擎选项
type Option func(*Engine)

// WithAcceptIncumbent 超出时间预算时接受可行解而不是报错
func WithAcceptIncumbent() Option {
	return func(e *Engine) { e.acceptIncumbent = true }
}

// WithDefaultParams 设置问题级参数的默认值，问题里的显式设置优先
func WithDefaultParams(p model.Params) Option {
	return func(e *Engine) { e.defaults = p }
}

// WithLogger 替换求解日志器
func WithLogger(l *logger.RosterLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithVerboseSolver 打开求解器的详细输出
func WithVerboseSolver() Option {
	return func(e *Engine) { e.verbose = true }
}

// WithoutMetrics 关闭指标上报
func WithoutMetrics() Option {
	return func(e *Engine) { e.metricsOn = false }
}

// NewEngine 创建引擎，s 为 nil 时使用 GLPK 求解器
func NewEngine(s solver.Solver, opts ...Option) *Engine {
	if s == nil {
		s = solver.NewGLPKSolver()
	}
	e := &Engine{
		solver:       s,
		assembler:    assembler.New(),
		problemCheck: validator.NewProblemValidator(),
		log:          logger.NewRosterLogger(),
		metricsOn:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateSchedule 生成一张周排班表
//
// timeLimit 为 0 表示不限制求解时间。超出预算时的行为由
// AcceptIncumbent 选项决定：接受可行解，或返回超时错误。
func (e *Engine) GenerateSchedule(ctx context.Context, problem *model.Problem, rosterType model.RosterType, timeLimit time.Duration) (*model.RenderedSchedule, error) {
	start := time.Now()
	runID := uuid.New().String()

	if !rosterType.Valid() {
		e.record(rosterType, "model_unknown", time.Since(start))
		return nil, errors.ModelUnknown(string(rosterType))
	}
	if problem == nil {
		e.record(rosterType, "invalid_input", time.Since(start))
		return nil, errors.InvalidInput("problem", "问题定义不能为空")
	}

	e.log.StartSolve(runID, string(rosterType), len(problem.Staff), len(problem.Shifts))

	if err := e.problemCheck.Validate(problem); err != nil {
		e.record(rosterType, "validation_failed", time.Since(start))
		return nil, err
	}

	problem = e.applyDefaults(problem)

	// 零班次问题直接产出空排班表，这是空结果唯一合法的情形
	if len(problem.Shifts) == 0 {
		schedule, err := e.assemble(problem, &model.Solution{Status: model.StatusOptimal}, runID, rosterType)
		if err != nil {
			e.record(rosterType, "error", time.Since(start))
			return nil, err
		}
		e.record(rosterType, string(model.StatusOptimal), time.Since(start))
		e.log.SolveComplete(runID, time.Since(start), 0)
		return schedule, nil
	}

	if err := e.phaseErr(ctx); err != nil {
		e.record(rosterType, "timeout", time.Since(start))
		return nil, err
	}

	idx := availability.BuildIndex(problem.Availability)

	strat, err := strategy.ForRosterType(rosterType)
	if err != nil {
		e.record(rosterType, "model_unknown", time.Since(start))
		return nil, err
	}

	inst := strategy.NewInstance(problem, idx)
	buildout, err := strat.Build(inst)
	if err != nil {
		e.record(rosterType, "error", time.Since(start))
		return nil, err
	}

	f := buildout.Formulation
	e.log.ModelBuilt(runID, f.VariableCount(), f.ConstraintCount())
	if e.metricsOn {
		metrics.SetModelSize(string(rosterType), f.VariableCount(), f.ConstraintCount())
	}

	if err := e.phaseErr(ctx); err != nil {
		e.record(rosterType, "timeout", time.Since(start))
		return nil, err
	}

	res, err := e.solver.Solve(ctx, f, solver.Options{TimeLimit: timeLimit, Verbose: e.verbose})
	if err != nil {
		e.record(rosterType, "error", time.Since(start))
		return nil, errors.SolverFailure(e.solver.Name(), err)
	}

	switch res.Status {
	case model.StatusInfeasible:
		suspects := strat.Diagnose(inst)
		// 结构检查没有命中时退而报告模型里的全部约束组
		if len(suspects) == 0 {
			suspects = f.Groups()
		}
		e.log.Infeasible(runID, suspects)
		e.record(rosterType, string(model.StatusInfeasible), time.Since(start))
		reason := res.Message
		if reason == "" {
			reason = "约束组合冲突，不存在满足全部约束的排班"
		}
		return nil, errors.Infeasible(reason, suspects)

	case model.StatusError:
		e.record(rosterType, string(model.StatusError), time.Since(start))
		return nil, errors.SolverFailure(e.solver.Name(), stderrors.New(res.Message))

	case model.StatusFeasible:
		if !e.acceptIncumbent {
			e.record(rosterType, "timeout", time.Since(start))
			return nil, errors.SolveTimeout(res.Message)
		}
	}

	assignments := buildout.Decode(res.Values)

	auditor := validator.NewRosterAuditor(validator.AuditConfigFor(rosterType))
	if findings := auditor.Audit(problem, idx, assignments); len(findings) > 0 {
		logger.Error().
			Str("run_id", runID).
			Int("findings", len(findings)).
			Str("first", findings[0].Message).
			Msg("求解结果未通过审计")
		e.record(rosterType, "error", time.Since(start))
		return nil, errors.New(errors.CodeInternal, "求解结果未通过一致性审计").
			WithField("findings", findings)
	}

	sol := &model.Solution{
		Status:      res.Status,
		Objective:   res.Objective,
		Assignments: assignments,
		Variables:   res.Variables,
		Constraints: res.Constraints,
		Duration:    res.Duration,
		Message:     res.Message,
	}

	schedule, err := e.assemble(problem, sol, runID, rosterType)
	if err != nil {
		e.record(rosterType, "error", time.Since(start))
		return nil, err
	}

	duration := time.Since(start)
	e.record(rosterType, string(res.Status), duration)
	if e.metricsOn && schedule.Stats != nil {
		metrics.SetObjectiveValue(string(rosterType), schedule.Stats.Objective)
		metrics.SetCoverageRate(string(rosterType), schedule.Stats.CoverageRate)
		metrics.SetWorkloadGini(string(rosterType), schedule.Stats.WorkloadGini)
	}
	e.log.SolveComplete(runID, duration, res.Objective)

	return schedule, nil
}

// CheckAvailability 回答单条可用性查询
func (e *Engine) CheckAvailability(records []model.AvailabilityRecord, staffID, shiftID string) bool {
	if e.metricsOn {
		metrics.RecordAvailabilityChecks(1)
	}
	return availability.BuildIndex(records).IsAvailable(staffID, shiftID)
}

// CheckAvailabilityBatch 批量回答可用性查询，结果与查询一一对应
//
// 大量查询时建议调用方自建 availability.Index，避免重复构建。
func (e *Engine) CheckAvailabilityBatch(records []model.AvailabilityRecord, queries []availability.Query) []bool {
	if e.metricsOn {
		metrics.RecordAvailabilityChecks(len(queries))
	}
	return availability.BuildIndex(records).CheckBatch(queries)
}

// applyDefaults 把引擎级默认参数填入问题的零值字段
func (e *Engine) applyDefaults(p *model.Problem) *model.Problem {
	if e.defaults == (model.Params{}) {
		return p
	}
	merged := *p
	if merged.Params.MinShiftsPerStaff == 0 {
		merged.Params.MinShiftsPerStaff = e.defaults.MinShiftsPerStaff
	}
	if merged.Params.MinStaffPerShift == 0 {
		merged.Params.MinStaffPerShift = e.defaults.MinStaffPerShift
	}
	if merged.Params.MaxShiftsExperienced == 0 {
		merged.Params.MaxShiftsExperienced = e.defaults.MaxShiftsExperienced
	}
	if merged.Params.MaxShiftsNew == 0 {
		merged.Params.MaxShiftsNew = e.defaults.MaxShiftsNew
	}
	return &merged
}

// assemble 组装排班表并补充运行标识
func (e *Engine) assemble(problem *model.Problem, sol *model.Solution, runID string, rosterType model.RosterType) (*model.RenderedSchedule, error) {
	schedule, err := e.assembler.Assemble(problem, sol)
	if err != nil {
		return nil, err
	}
	schedule.RunID = runID
	schedule.RosterType = rosterType
	schedule.GeneratedAt = time.Now().UTC()
	return schedule, nil
}

// phaseErr 把阶段间的 ctx 状态翻译为引擎错误
func (e *Engine) phaseErr(ctx context.Context) error {
	switch ctx.Err() {
	case nil:
		return nil
	case context.DeadlineExceeded:
		return errors.SolveTimeout("求解开始前已超出时间预算")
	default:
		return errors.Wrap(ctx.Err(), errors.CodeInternal, "求解被取消")
	}
}

// record 上报一次求解的计数与耗时
func (e *Engine) record(rosterType model.RosterType, status string, duration time.Duration) {
	if !e.metricsOn {
		return
	}
	metrics.RecordSolve(string(rosterType), status, duration)
}
