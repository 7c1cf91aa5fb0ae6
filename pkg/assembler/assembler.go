// Package assembler 将求解结果组装为可渲染的周排班表
//
// 组装是纯函数：同样的输入永远产出同样的排班表，不生成任何
// 标识或时间戳，这些由上层引擎统一补充。
package assembler

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/stats"
)

// Assembler 排班表组装器
type Assembler struct {
	coverage *stats.CoverageAnalyzer
	workload *stats.WorkloadAnalyzer
}

// New 创建组装器
func New() *Assembler {
	return &Assembler{
		coverage: stats.NewCoverageAnalyzer(),
		workload: stats.NewWorkloadAnalyzer(),
	}
}

// Assemble 把分配集组装为按 日→班次→人员 的层级结构
//
// 班次顺序严格保持调用方传入的切片顺序，天按首次出现的顺序排列，
// 绝不重新排序。人员顺序跟随 Problem.Staff 的顺序。
func (a *Assembler) Assemble(problem *model.Problem, solution *model.Solution) (*model.RenderedSchedule, error) {
	if problem == nil || solution == nil {
		return nil, errors.New(errors.CodeInternal, "组装输入不能为空")
	}

	staffByID := problem.StaffByID()
	shiftByID := problem.ShiftByID()

	// 班次 → 在岗人员（保持 Problem.Staff 顺序）
	assignedSet := make(map[string]map[string]bool)
	for _, asg := range solution.Assignments {
		if _, ok := staffByID[asg.StaffID]; !ok {
			return nil, errors.New(errors.CodeInternal,
				fmt.Sprintf("分配引用了未知员工: %s", asg.StaffID))
		}
		if _, ok := shiftByID[asg.ShiftID]; !ok {
			return nil, errors.New(errors.CodeInternal,
				fmt.Sprintf("分配引用了未知班次: %s", asg.ShiftID))
		}
		if assignedSet[asg.ShiftID] == nil {
			assignedSet[asg.ShiftID] = make(map[string]bool)
		}
		assignedSet[asg.ShiftID][asg.StaffID] = true
	}

	schedule := &model.RenderedSchedule{
		Status: solution.Status,
	}

	// 天按首次出现顺序分组
	dayIndex := make(map[string]int)
	for _, sh := range problem.Shifts {
		idx, seen := dayIndex[sh.Day]
		if !seen {
			idx = len(schedule.Days)
			dayIndex[sh.Day] = idx
			schedule.Days = append(schedule.Days, &model.ScheduleDay{Day: sh.Day})
		}

		scheduled := &model.ScheduledShift{
			ShiftID: sh.ID,
			Name:    sh.Name,
			Start:   sh.Start,
			End:     sh.End,
		}
		onDuty := assignedSet[sh.ID]
		for _, st := range problem.Staff {
			if onDuty[st.ID] {
				scheduled.Staff = append(scheduled.Staff, &model.AssignedStaff{
					StaffID: st.ID,
					Name:    st.Name,
				})
			}
		}
		schedule.Days[idx].Shifts = append(schedule.Days[idx].Shifts, scheduled)
	}

	schedule.Stats = a.buildStats(problem, solution)
	return schedule, nil
}

// buildStats 从分配集重算统计数据
func (a *Assembler) buildStats(problem *model.Problem, solution *model.Solution) *model.ScheduleStats {
	cov := a.coverage.Analyze(problem.Shifts, problem.Staff, solution.Assignments)
	wl := a.workload.Analyze(problem.Shifts, problem.Staff, solution.Assignments)

	return &model.ScheduleStats{
		TotalShifts:      cov.TotalShifts,
		CoveredShifts:    cov.CoveredShifts,
		CoverageRate:     cov.CoverageRate,
		TotalAssignments: cov.TotalAssignments,
		HoursByStaff:     wl.HoursByStaff,
		ShiftsByStaff:    wl.ShiftsByStaff,
		WorkloadGini:     wl.WorkloadGini,
		Objective:        solution.Objective,
	}
}
