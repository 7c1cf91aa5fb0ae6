// Package model 定义排班求解引擎的核心数据模型
package model

// RosterType 排班模型类型
type RosterType string

const (
	// RosterHelpdesk 覆盖模型：最小化加权课程覆盖缺口
	RosterHelpdesk RosterType = "helpdesk"
	// RosterLab 公平模型：最大化最差人员的偏好满足度
	RosterLab RosterType = "lab"
)

// Valid 检查模型类型是否受支持
func (t RosterType) Valid() bool {
	return t == RosterHelpdesk || t == RosterLab
}

// 问题参数默认值
const (
	DefaultMinShiftsPerStaff    = 4
	DefaultMinStaffPerShift     = 2
	DefaultMaxShiftsExperienced = 3
	DefaultMaxShiftsNew         = 1
)

// Params 问题级参数，零值字段取默认值
type Params struct {
	// 每人每周最少班次数（覆盖模型，人员可单独覆盖）
	MinShiftsPerStaff int `json:"min_shifts_per_staff,omitempty" validate:"gte=0"`
	// 每班次最少在岗人数（覆盖模型）
	MinStaffPerShift int `json:"min_staff_per_shift,omitempty" validate:"gte=0"`
	// 熟手班次上限（公平模型）
	MaxShiftsExperienced int `json:"max_shifts_experienced,omitempty" validate:"gte=0"`
	// 新人班次上限（公平模型）
	MaxShiftsNew int `json:"max_shifts_new,omitempty" validate:"gte=0"`
}

// Normalize 返回填入默认值后的参数副本
func (p Params) Normalize() Params {
	if p.MinShiftsPerStaff == 0 {
		p.MinShiftsPerStaff = DefaultMinShiftsPerStaff
	}
	if p.MinStaffPerShift == 0 {
		p.MinStaffPerShift = DefaultMinStaffPerShift
	}
	if p.MaxShiftsExperienced == 0 {
		p.MaxShiftsExperienced = DefaultMaxShiftsExperienced
	}
	if p.MaxShiftsNew == 0 {
		p.MaxShiftsNew = DefaultMaxShiftsNew
	}
	return p
}

// ShiftFloorFor 返回人员的最少班次数，人员级设置优先于问题级默认
func (p Params) ShiftFloorFor(s *Staff) int {
	if s.MinShifts > 0 {
		return s.MinShifts
	}
	return p.MinShiftsPerStaff
}

// ShiftCapFor 返回人员的班次上限，按新人标记区分
func (p Params) ShiftCapFor(s *Staff) int {
	if s.IsNew {
		return p.MaxShiftsNew
	}
	return p.MaxShiftsExperienced
}

// AvailabilityRecord 可用性记录：人员 × 班次 → 是否可上
type AvailabilityRecord struct {
	StaffID   string `json:"staff_id" validate:"required"`
	ShiftID   string `json:"shift_id" validate:"required"`
	Available bool   `json:"available"`
}

// Problem 一次求解的完整问题实例
//
// Shifts 的切片顺序是权威的天/班次顺序，贯穿到最终排班表。
type Problem struct {
	Staff        []*Staff             `json:"staff" validate:"omitempty,dive,required"`
	Shifts       []*Shift             `json:"shifts" validate:"omitempty,dive,required"`
	Availability []AvailabilityRecord `json:"availability,omitempty" validate:"omitempty,dive"`
	Params       Params               `json:"params"`
}

// StaffByID 构建人员ID索引
func (p *Problem) StaffByID() map[string]*Staff {
	m := make(map[string]*Staff, len(p.Staff))
	for _, s := range p.Staff {
		m[s.ID] = s
	}
	return m
}

// ShiftByID 构建班次ID索引
func (p *Problem) ShiftByID() map[string]*Shift {
	m := make(map[string]*Shift, len(p.Shifts))
	for _, s := range p.Shifts {
		m[s.ID] = s
	}
	return m
}
