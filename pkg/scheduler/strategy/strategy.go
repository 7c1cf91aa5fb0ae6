// Package strategy 实现可插拔的排班模型
//
// 每个模型负责把问题实例翻译成 MILP 模型：声明哪些变量存在、
// 有哪些线性约束、目标函数是什么。求解本身交给 solver 包。
package strategy

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/availability"
	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/milp"
)

// 约束组名，不可行诊断与错误报告按组引用
const (
	GroupCourseCoverageCap   = "course_coverage_cap"
	GroupStaffMinShifts      = "staff_min_shifts"
	GroupShiftMinStaffing    = "shift_min_staffing"
	GroupShiftHeadcountCap   = "shift_headcount_cap"
	GroupStaffShiftCap       = "staff_shift_cap"
	GroupExperiencedPresence = "experienced_presence"
	GroupFairnessFloor       = "fairness_floor"
)

// Instance 一次求解的快照：问题、可用性索引、归一化后的参数
type Instance struct {
	Problem *model.Problem
	Index   *availability.Index
	Params  model.Params
}

// NewInstance 构建求解快照
func NewInstance(p *model.Problem, idx *availability.Index) *Instance {
	return &Instance{
		Problem: p,
		Index:   idx,
		Params:  p.Params.Normalize(),
	}
}

// Pair 一个存在决策变量的 (人员, 班次) 对
type Pair struct {
	StaffID string
	ShiftID string
}

// Buildout 模型构建产物
//
// 分配变量总是最先分配且与 Pairs 一一对应（下标 k 的变量即 Pairs[k]），
// 辅助变量（如公平模型的 L）排在其后。
type Buildout struct {
	Formulation *milp.Formulation
	Pairs       []Pair
}

// Decode 把求解器返回的变量取值翻译回分配集
func (b *Buildout) Decode(values []float64) []model.Assignment {
	assignments := make([]model.Assignment, 0, len(b.Pairs))
	for k, p := range b.Pairs {
		if k >= len(values) {
			break
		}
		if values[k] > 0.5 {
			assignments = append(assignments, model.Assignment{
				StaffID: p.StaffID,
				ShiftID: p.ShiftID,
			})
		}
	}
	return assignments
}

// Strategy 排班模型契约
type Strategy interface {
	// Name 返回模型类型标识
	Name() string
	// Build 把问题实例构建成 MILP 模型
	Build(inst *Instance) (*Buildout, error)
	// Diagnose 对不可行实例做结构化检查，返回疑似冲突的约束组
	Diagnose(inst *Instance) []string
}

// ForRosterType 按模型类型取策略
func ForRosterType(t model.RosterType) (Strategy, error) {
	switch t {
	case model.RosterHelpdesk:
		return NewCoverageStrategy(), nil
	case model.RosterLab:
		return NewFairnessStrategy(), nil
	default:
		return nil, errors.ModelUnknown(string(t))
	}
}

// allocAssignmentVars 为每个可用的 (人员, 班次) 对分配一个 0/1 变量
//
// 不可用的对被整体省略而不是约束为零，模型规模只随可用对数增长。
// 遍历顺序固定为人员序 × 班次序，保证同一问题构建出的模型完全一致。
func allocAssignmentVars(f *milp.Formulation, inst *Instance) ([]Pair, map[Pair]int) {
	var pairs []Pair
	varOf := make(map[Pair]int)

	for _, st := range inst.Problem.Staff {
		for _, sh := range inst.Problem.Shifts {
			if !inst.Index.IsAvailable(st.ID, sh.ID) {
				continue
			}
			v := f.AddBinary(fmt.Sprintf("x_%s_%s", st.ID, sh.ID))
			p := Pair{StaffID: st.ID, ShiftID: sh.ID}
			pairs = append(pairs, p)
			varOf[p] = v
		}
	}

	return pairs, varOf
}

// appendUnique 追加尚未出现的组名
func appendUnique(groups []string, g string) []string {
	for _, have := range groups {
		if have == g {
			return groups
		}
	}
	return append(groups, g)
}
