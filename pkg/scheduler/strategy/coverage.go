// Package strategy 实现可插拔的排班模型
package strategy

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/milp"
)

// CoverageStrategy 覆盖模型（helpdesk）
//
// 最小化各班次各课程的加权覆盖缺口：
//
//	min sum_j sum_k w[j,k] * (demand[j,k] - sum_i x[i,j]*capable[i,k])
//
// 缺口上界约束保证覆盖量不超过期望人数，目标因此恒非负且保持线性，
// 不需要辅助缺口变量。课程权重缺省取期望人数本身。
type CoverageStrategy struct{}

// NewCoverageStrategy 创建覆盖模型
func NewCoverageStrategy() *CoverageStrategy {
	return &CoverageStrategy{}
}

// Name 返回模型类型标识
func (s *CoverageStrategy) Name() string {
	return string(model.RosterHelpdesk)
}

// Build 构建覆盖模型的 MILP
func (s *CoverageStrategy) Build(inst *Instance) (*Buildout, error) {
	f := milp.NewFormulation("coverage_roster", milp.Minimize)
	pairs, varOf := allocAssignmentVars(f, inst)

	// 目标与覆盖上界约束
	//
	// 常数项 sum w*demand 记入 ObjConstant，每个可计入覆盖的变量
	// 贡献 -w；期望人数为 0 的课程既无缺口也不设约束。
	for _, sh := range inst.Problem.Shifts {
		for _, course := range sh.Courses() {
			demand := sh.Demand[course]
			if demand <= 0 {
				continue
			}
			w := sh.DemandWeight(course)
			f.ObjConstant += w * float64(demand)

			var terms []milp.Term
			for _, st := range inst.Problem.Staff {
				if !st.Capable(course) {
					continue
				}
				if v, ok := varOf[Pair{StaffID: st.ID, ShiftID: sh.ID}]; ok {
					terms = append(terms, milp.Term{Var: v, Coef: 1})
					f.AddObjCoef(v, -w)
				}
			}

			// 没有可用且胜任的人员时缺口恒为 demand，只留常数项
			if len(terms) > 0 {
				f.AddLE(fmt.Sprintf("cov_%s_%s", sh.ID, course), GroupCourseCoverageCap,
					terms, float64(demand))
			}
		}
	}

	// 每人最少班次数
	for _, st := range inst.Problem.Staff {
		floor := inst.Params.ShiftFloorFor(st)
		if floor <= 0 {
			continue
		}
		var terms []milp.Term
		for _, sh := range inst.Problem.Shifts {
			if v, ok := varOf[Pair{StaffID: st.ID, ShiftID: sh.ID}]; ok {
				terms = append(terms, milp.Term{Var: v, Coef: 1})
			}
		}
		f.AddGE(fmt.Sprintf("minshifts_%s", st.ID), GroupStaffMinShifts,
			terms, float64(floor))
	}

	// 每班次最少在岗人数
	if inst.Params.MinStaffPerShift > 0 {
		for _, sh := range inst.Problem.Shifts {
			var terms []milp.Term
			for _, st := range inst.Problem.Staff {
				if v, ok := varOf[Pair{StaffID: st.ID, ShiftID: sh.ID}]; ok {
					terms = append(terms, milp.Term{Var: v, Coef: 1})
				}
			}
			f.AddGE(fmt.Sprintf("minstaff_%s", sh.ID), GroupShiftMinStaffing,
				terms, float64(inst.Params.MinStaffPerShift))
		}
	}

	return &Buildout{Formulation: f, Pairs: pairs}, nil
}

// Diagnose 对不可行的覆盖模型实例做结构化检查
//
// GLPK 绑定不提供 IIS/冲突集，这里用廉价的结构检查近似定位：
// 可用人数撑不起班次下限、可用班次撑不起人员下限、以及课程覆盖
// 上界与班次人数下限的直接冲突。
func (s *CoverageStrategy) Diagnose(inst *Instance) []string {
	var groups []string
	p := inst.Problem

	// 班次的可用人数不足以满足最少在岗人数
	for _, sh := range p.Shifts {
		if len(inst.Index.AvailableStaffFor(sh.ID)) < inst.Params.MinStaffPerShift {
			groups = appendUnique(groups, GroupShiftMinStaffing)
			break
		}
	}

	// 人员的可用班次不足以满足最少班次数
	for _, st := range p.Staff {
		if len(inst.Index.AvailableShiftsFor(st.ID)) < inst.Params.ShiftFloorFor(st) {
			groups = appendUnique(groups, GroupStaffMinShifts)
			break
		}
	}

	// 某课程覆盖上界直接压过班次人数下限：
	// 该班次所有可用人员都胜任同一门课且其期望人数低于最少在岗人数
	for _, sh := range p.Shifts {
		avail := inst.Index.AvailableStaffFor(sh.ID)
		if len(avail) == 0 {
			continue
		}
		staffByID := p.StaffByID()
		for _, course := range sh.Courses() {
			demand := sh.Demand[course]
			if demand <= 0 || demand >= inst.Params.MinStaffPerShift {
				continue
			}
			allCapable := true
			for _, id := range avail {
				st := staffByID[id]
				if st == nil || !st.Capable(course) {
					allCapable = false
					break
				}
			}
			if allCapable {
				groups = appendUnique(groups, GroupCourseCoverageCap)
				groups = appendUnique(groups, GroupShiftMinStaffing)
			}
		}
	}

	return groups
}
