// Package strategy 实现可插拔的排班模型
package strategy

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/milp"
)

// FairnessStrategy 公平模型（lab）
//
// 最大化最差人员的归一化偏好满足度（max-min 公平）：引入标量 L，
//
//	max L  s.t.  L <= sum_j w[i,j]*x[i,j]  对每个人员 i
//
// 再加上班次人数上限、按资历区分的人员班次上限、以及每班至少
// 一名熟手的在场约束。
type FairnessStrategy struct{}

// NewFairnessStrategy 创建公平模型
func NewFairnessStrategy() *FairnessStrategy {
	return &FairnessStrategy{}
}

// Name 返回模型类型标识
func (s *FairnessStrategy) Name() string {
	return string(model.RosterLab)
}

// PreferenceWeights 计算公平模型的归一化偏好权重
//
//	w[i,j] = (1/r_i) * (p[i,j] - mean_j(p[i,·]) + 5)
//
// r_i 取该人员的班次上限（默认新人 1、熟手 3），均值按已填写的偏好
// 计算，未填写任何偏好时为 0。必须在模型构建前一次性算好，保证不同
// 填写数量的人员落在可比的量纲上。除以 r_i 会结构性压低新人权重，
// 这是沿用的明确政策。
func PreferenceWeights(inst *Instance) map[string]map[string]float64 {
	weights := make(map[string]map[string]float64, len(inst.Problem.Staff))
	for _, st := range inst.Problem.Staff {
		r := float64(inst.Params.ShiftCapFor(st))
		if r <= 0 {
			r = 1
		}
		mean := st.PreferenceMean()
		row := make(map[string]float64, len(inst.Problem.Shifts))
		for _, sh := range inst.Problem.Shifts {
			row[sh.ID] = (st.PreferenceFor(sh.ID) - mean + 5) / r
		}
		weights[st.ID] = row
	}
	return weights
}

// Build 构建公平模型的 MILP
func (s *FairnessStrategy) Build(inst *Instance) (*Buildout, error) {
	f := milp.NewFormulation("fairness_roster", milp.Maximize)
	pairs, varOf := allocAssignmentVars(f, inst)
	weights := PreferenceWeights(inst)

	// L 是所有人员满足度的真下界，满足度可能为负，因此不设界
	lvar := f.AddFree("L")
	f.SetObjCoef(lvar, 1)

	// L - sum_j w[i,j]*x[i,j] <= 0 每人一条
	for _, st := range inst.Problem.Staff {
		terms := []milp.Term{{Var: lvar, Coef: 1}}
		for _, sh := range inst.Problem.Shifts {
			if v, ok := varOf[Pair{StaffID: st.ID, ShiftID: sh.ID}]; ok {
				terms = append(terms, milp.Term{Var: v, Coef: -weights[st.ID][sh.ID]})
			}
		}
		f.AddLE(fmt.Sprintf("fair_%s", st.ID), GroupFairnessFloor, terms, 0)
	}

	// 班次人数上限
	for _, sh := range inst.Problem.Shifts {
		var terms []milp.Term
		for _, st := range inst.Problem.Staff {
			if v, ok := varOf[Pair{StaffID: st.ID, ShiftID: sh.ID}]; ok {
				terms = append(terms, milp.Term{Var: v, Coef: 1})
			}
		}
		if len(terms) > 0 {
			f.AddLE(fmt.Sprintf("head_%s", sh.ID), GroupShiftHeadcountCap,
				terms, float64(sh.Headcount))
		}
	}

	// 人员班次上限，按新人/熟手区分
	for _, st := range inst.Problem.Staff {
		var terms []milp.Term
		for _, sh := range inst.Problem.Shifts {
			if v, ok := varOf[Pair{StaffID: st.ID, ShiftID: sh.ID}]; ok {
				terms = append(terms, milp.Term{Var: v, Coef: 1})
			}
		}
		if len(terms) > 0 {
			f.AddLE(fmt.Sprintf("cap_%s", st.ID), GroupStaffShiftCap,
				terms, float64(inst.Params.ShiftCapFor(st)))
		}
	}

	// 每班至少一名熟手在场
	for _, sh := range inst.Problem.Shifts {
		var terms []milp.Term
		for _, st := range inst.Problem.Staff {
			if st.IsNew {
				continue
			}
			if v, ok := varOf[Pair{StaffID: st.ID, ShiftID: sh.ID}]; ok {
				terms = append(terms, milp.Term{Var: v, Coef: 1})
			}
		}
		f.AddGE(fmt.Sprintf("exp_%s", sh.ID), GroupExperiencedPresence, terms, 1)
	}

	return &Buildout{Formulation: f, Pairs: pairs}, nil
}

// Diagnose 对不可行的公平模型实例做结构化检查
func (s *FairnessStrategy) Diagnose(inst *Instance) []string {
	var groups []string
	p := inst.Problem
	staffByID := p.StaffByID()

	// 班次没有任何可用熟手
	for _, sh := range p.Shifts {
		hasExperienced := false
		for _, id := range inst.Index.AvailableStaffFor(sh.ID) {
			if st := staffByID[id]; st != nil && !st.IsNew {
				hasExperienced = true
				break
			}
		}
		if !hasExperienced {
			groups = appendUnique(groups, GroupExperiencedPresence)
			break
		}
	}

	// 人数上限为零的班次与熟手在场约束直接冲突
	for _, sh := range p.Shifts {
		if sh.Headcount <= 0 {
			groups = appendUnique(groups, GroupShiftHeadcountCap)
			groups = appendUnique(groups, GroupExperiencedPresence)
			break
		}
	}

	// 熟手总供给撑不起每班一名熟手的需求
	supply := 0
	for _, st := range p.Staff {
		if st.IsNew {
			continue
		}
		avail := len(inst.Index.AvailableShiftsFor(st.ID))
		if capacity := inst.Params.ShiftCapFor(st); avail > capacity {
			avail = capacity
		}
		supply += avail
	}
	if supply < len(p.Shifts) {
		groups = appendUnique(groups, GroupExperiencedPresence)
		groups = appendUnique(groups, GroupStaffShiftCap)
	}

	return groups
}
