// Package model 定义排班求解引擎的核心数据模型
package model

import "time"

// RenderedSchedule 最终排班表
//
// 这是引擎跨边界返回的唯一产物：天 → 班次 → 人员的有序嵌套结构。
// Days 与每天内的班次顺序严格保持调用方传入的 Shift 顺序。
type RenderedSchedule struct {
	RunID       string         `json:"run_id,omitempty"`
	RosterType  RosterType     `json:"roster_type"`
	Status      SolveStatus    `json:"status"`
	Days        []*ScheduleDay `json:"days"`
	Stats       *ScheduleStats `json:"stats,omitempty"`
	GeneratedAt time.Time      `json:"generated_at,omitempty"`
}

// ScheduleDay 一天的排班
type ScheduleDay struct {
	Day    string            `json:"day"`
	Shifts []*ScheduledShift `json:"shifts"`
}

// ScheduledShift 一个班次及其人员
type ScheduledShift struct {
	ShiftID string           `json:"shift_id"`
	Name    string           `json:"name,omitempty"`
	Start   string           `json:"start"`
	End     string           `json:"end"`
	Staff   []*AssignedStaff `json:"staff"`
}

// AssignedStaff 班次上的人员
type AssignedStaff struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name,omitempty"`
}

// ScheduleStats 排班统计
//
// 所有数值都可以仅凭分配集确定性地重算，不依赖任何隐藏状态。
type ScheduleStats struct {
	TotalShifts      int                `json:"total_shifts"`
	CoveredShifts    int                `json:"covered_shifts"` // 至少 1 人在岗的班次数
	CoverageRate     float64            `json:"coverage_rate"`  // 百分比
	TotalAssignments int                `json:"total_assignments"`
	HoursByStaff     map[string]float64 `json:"hours_by_staff,omitempty"`
	ShiftsByStaff    map[string]int     `json:"shifts_by_staff,omitempty"`
	WorkloadGini     float64            `json:"workload_gini"`
	Objective        float64            `json:"objective"`
}

// AssignmentCount 返回某人员的班次数
func (st *ScheduleStats) AssignmentCount(staffID string) int {
	return st.ShiftsByStaff[staffID]
}
