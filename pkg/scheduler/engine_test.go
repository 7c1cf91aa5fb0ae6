package scheduler

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/availability"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/milp"
	"github.com/zhiban/zhiban/pkg/scheduler/solver"
)

func TestEngine_GenerateSchedule(t *testing.T) {
	stub := &stubSolver{result: &solver.Result{
		Status:      model.StatusOptimal,
		Objective:   4,
		Values:      []float64{1, 0, 0, 1},
		Variables:   4,
		Constraints: 4,
	}}
	engine := NewEngine(stub)

	schedule, err := engine.GenerateSchedule(context.Background(),
		engineProblem(), model.RosterHelpdesk, 42*time.Second)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}

	if schedule.RunID == "" {
		t.Error("RunID 应被填充")
	}
	if schedule.RosterType != model.RosterHelpdesk {
		t.Errorf("RosterType = %v", schedule.RosterType)
	}
	if schedule.GeneratedAt.IsZero() {
		t.Error("GeneratedAt 应被填充")
	}
	if schedule.Status != model.StatusOptimal {
		t.Errorf("Status = %v, expected optimal", schedule.Status)
	}
	if len(schedule.Days) != 2 {
		t.Errorf("len(Days) = %d, expected 2", len(schedule.Days))
	}
	if schedule.Stats.TotalAssignments != 2 {
		t.Errorf("TotalAssignments = %d, expected 2", schedule.Stats.TotalAssignments)
	}
	if schedule.Stats.Objective != 4 {
		t.Errorf("Objective = %v, expected 4", schedule.Stats.Objective)
	}

	// 时间预算原样传给求解器
	if stub.gotOpts.TimeLimit != 42*time.Second {
		t.Errorf("TimeLimit = %v, expected 42s", stub.gotOpts.TimeLimit)
	}
	if stub.gotF == nil || stub.gotF.VariableCount() != 4 {
		t.Error("求解器应收到构建好的模型")
	}
}

func TestEngine_GenerateSchedule_ModelUnknown(t *testing.T) {
	engine := NewEngine(&stubSolver{})

	_, err := engine.GenerateSchedule(context.Background(), nil, model.RosterType("night"), 0)
	if !errors.Is(err, errors.CodeModelUnknown) {
		t.Errorf("error = %v, expected MODEL_UNKNOWN", err)
	}
}

func TestEngine_GenerateSchedule_NilProblem(t *testing.T) {
	engine := NewEngine(&stubSolver{})

	_, err := engine.GenerateSchedule(context.Background(), nil, model.RosterHelpdesk, 0)
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Errorf("error = %v, expected INVALID_INPUT", err)
	}
}

func TestEngine_GenerateSchedule_ValidationFail(t *testing.T) {
	stub := &stubSolver{}
	engine := NewEngine(stub)

	problem := engineProblem()
	problem.Staff[1].ID = "A" // 重复ID

	_, err := engine.GenerateSchedule(context.Background(), problem, model.RosterHelpdesk, 0)
	if !errors.Is(err, errors.CodeValidationFail) {
		t.Errorf("error = %v, expected VALIDATION_FAILED", err)
	}
	if stub.gotF != nil {
		t.Error("校验失败后不应触发求解")
	}
}

func TestEngine_GenerateSchedule_Infeasible(t *testing.T) {
	stub := &stubSolver{result: &solver.Result{Status: model.StatusInfeasible}}
	engine := NewEngine(stub)

	// 仅 1 人可用却要求每班 2 人
	problem := &model.Problem{
		Staff: []*model.Staff{{ID: "A"}},
		Shifts: []*model.Shift{
			{ID: "S1", Day: "Mon", Start: "09:00", End: "12:00"},
		},
		Availability: []model.AvailabilityRecord{
			{StaffID: "A", ShiftID: "S1", Available: true},
		},
		Params: model.Params{MinShiftsPerStaff: 1, MinStaffPerShift: 2},
	}

	_, err := engine.GenerateSchedule(context.Background(), problem, model.RosterHelpdesk, 0)
	if !errors.Is(err, errors.CodeNoFeasibleSolution) {
		t.Fatalf("error = %v, expected NO_FEASIBLE_SOLUTION", err)
	}

	// 结构化诊断给出疑似冲突的约束组
	groups := errors.SuspectGroups(err)
	if !reflect.DeepEqual(groups, []string{"shift_min_staffing"}) {
		t.Errorf("SuspectGroups = %v, expected [shift_min_staffing]", groups)
	}
}

func TestEngine_GenerateSchedule_FeasibleRejectedByDefault(t *testing.T) {
	stub := &stubSolver{result: &solver.Result{
		Status:  model.StatusFeasible,
		Values:  []float64{1, 0, 0, 1},
		Message: "超出时间预算 1s，保留当前可行解",
	}}
	engine := NewEngine(stub)

	_, err := engine.GenerateSchedule(context.Background(), engineProblem(), model.RosterHelpdesk, time.Second)
	if !errors.Is(err, errors.CodeSolveTimeout) {
		t.Errorf("error = %v, expected SOLVE_TIMEOUT", err)
	}
}

func TestEngine_GenerateSchedule_AcceptIncumbent(t *testing.T) {
	stub := &stubSolver{result: &solver.Result{
		Status: model.StatusFeasible,
		Values: []float64{1, 0, 0, 1},
	}}
	engine := NewEngine(stub, WithAcceptIncumbent())

	schedule, err := engine.GenerateSchedule(context.Background(),
		engineProblem(), model.RosterHelpdesk, time.Second)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if schedule.Status != model.StatusFeasible {
		t.Errorf("Status = %v, expected feasible", schedule.Status)
	}
}

func TestEngine_GenerateSchedule_SolverFailure(t *testing.T) {
	t.Run("求解调用出错", func(t *testing.T) {
		stub := &stubSolver{err: stderrors.New("后端崩溃")}
		engine := NewEngine(stub)

		_, err := engine.GenerateSchedule(context.Background(), engineProblem(), model.RosterHelpdesk, 0)
		if !errors.Is(err, errors.CodeSolverFailure) {
			t.Errorf("error = %v, expected SOLVER_FAILURE", err)
		}
	})

	t.Run("求解结果为故障状态", func(t *testing.T) {
		stub := &stubSolver{result: &solver.Result{
			Status:  model.StatusError,
			Message: "simplex 求解失败",
		}}
		engine := NewEngine(stub)

		_, err := engine.GenerateSchedule(context.Background(), engineProblem(), model.RosterHelpdesk, 0)
		if !errors.Is(err, errors.CodeSolverFailure) {
			t.Errorf("error = %v, expected SOLVER_FAILURE", err)
		}
	})
}

func TestEngine_GenerateSchedule_AuditRejects(t *testing.T) {
	// 求解器谎称最优却一个分配都不给，审计应拦下这份结果
	stub := &stubSolver{result: &solver.Result{
		Status: model.StatusOptimal,
		Values: []float64{0, 0, 0, 0},
	}}
	engine := NewEngine(stub)

	_, err := engine.GenerateSchedule(context.Background(), engineProblem(), model.RosterHelpdesk, 0)
	if !errors.Is(err, errors.CodeInternal) {
		t.Errorf("error = %v, expected INTERNAL_ERROR", err)
	}
}

func TestEngine_GenerateSchedule_NoShifts(t *testing.T) {
	stub := &stubSolver{}
	engine := NewEngine(stub)

	problem := &model.Problem{
		Staff: []*model.Staff{{ID: "A"}},
	}

	schedule, err := engine.GenerateSchedule(context.Background(), problem, model.RosterHelpdesk, 0)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}

	if len(schedule.Days) != 0 {
		t.Errorf("len(Days) = %d, expected 0", len(schedule.Days))
	}
	if schedule.Status != model.StatusOptimal {
		t.Errorf("Status = %v, expected optimal", schedule.Status)
	}
	if schedule.RunID == "" {
		t.Error("空排班表也应有运行标识")
	}
	if stub.gotF != nil {
		t.Error("零班次问题不应触发求解")
	}
}

func TestEngine_GenerateSchedule_ContextStates(t *testing.T) {
	t.Run("已取消", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewEngine(&stubSolver{})
		_, err := engine.GenerateSchedule(ctx, engineProblem(), model.RosterHelpdesk, 0)
		if !errors.Is(err, errors.CodeInternal) {
			t.Errorf("error = %v, expected INTERNAL_ERROR", err)
		}
	})

	t.Run("已超时", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		engine := NewEngine(&stubSolver{})
		_, err := engine.GenerateSchedule(ctx, engineProblem(), model.RosterHelpdesk, 0)
		if !errors.Is(err, errors.CodeSolveTimeout) {
			t.Errorf("error = %v, expected SOLVE_TIMEOUT", err)
		}
	})
}

func TestEngine_DefaultParams(t *testing.T) {
	stub := &stubSolver{result: &solver.Result{
		Status: model.StatusOptimal,
		Values: []float64{1, 0, 0, 1},
	}}
	engine := NewEngine(stub, WithDefaultParams(model.Params{
		MinShiftsPerStaff: 1,
		MinStaffPerShift:  1,
	}))

	problem := engineProblem()
	problem.Params = model.Params{}

	if _, err := engine.GenerateSchedule(context.Background(), problem, model.RosterHelpdesk, 0); err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}

	// 引擎默认参数注入建模，但不回写问题实例
	if problem.Params != (model.Params{}) {
		t.Errorf("问题实例被改写: %+v", problem.Params)
	}
	sizes := stub.gotF.GroupSizes()
	if sizes["shift_min_staffing"] != 2 {
		t.Errorf("GroupSizes = %v, 默认参数未生效", sizes)
	}
}

func TestEngine_CheckAvailability(t *testing.T) {
	engine := NewEngine(&stubSolver{})
	records := []model.AvailabilityRecord{
		{StaffID: "A", ShiftID: "S1", Available: true},
		{StaffID: "B", ShiftID: "S1", Available: false},
	}

	if !engine.CheckAvailability(records, "A", "S1") {
		t.Error("A 在 S1 应可上班")
	}
	if engine.CheckAvailability(records, "B", "S1") {
		t.Error("B 在 S1 不应可上班")
	}
	if engine.CheckAvailability(records, "C", "S1") {
		t.Error("未声明的对不应可上班")
	}
}

func TestEngine_CheckAvailabilityBatch(t *testing.T) {
	engine := NewEngine(&stubSolver{})
	records := []model.AvailabilityRecord{
		{StaffID: "A", ShiftID: "S1", Available: true},
	}
	queries := []availability.Query{
		{StaffID: "A", ShiftID: "S1"},
		{StaffID: "A", ShiftID: "S2"},
	}

	got := engine.CheckAvailabilityBatch(records, queries)
	if !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("CheckAvailabilityBatch() = %v, expected [true false]", got)
	}
}

// stubSolver 可编程的求解器替身，记录引擎传入的模型与选项
type stubSolver struct {
	result  *solver.Result
	err     error
	gotF    *milp.Formulation
	gotOpts solver.Options
}

func (s *stubSolver) Solve(ctx context.Context, f *milp.Formulation, opts solver.Options) (*solver.Result, error) {
	s.gotF = f
	s.gotOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubSolver) Name() string {
	return "stub"
}

// engineProblem 2 人 × 2 班全可用，下限各 1
func engineProblem() *model.Problem {
	return &model.Problem{
		Staff: []*model.Staff{
			{ID: "A", Name: "张三"},
			{ID: "B", Name: "李四"},
		},
		Shifts: []*model.Shift{
			{ID: "S1", Day: "Mon", Start: "09:00", End: "12:00"},
			{ID: "S2", Day: "Tue", Start: "09:00", End: "12:00"},
		},
		Availability: []model.AvailabilityRecord{
			{StaffID: "A", ShiftID: "S1", Available: true},
			{StaffID: "A", ShiftID: "S2", Available: true},
			{StaffID: "B", ShiftID: "S1", Available: true},
			{StaffID: "B", ShiftID: "S2", Available: true},
		},
		Params: model.Params{MinShiftsPerStaff: 1, MinStaffPerShift: 1},
	}
}
