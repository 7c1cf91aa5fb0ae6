package validator

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/availability"
	"github.com/zhiban/zhiban/pkg/model"
)

// FindingType 审计发现类型
type FindingType string

const (
	FindingDuplicate    FindingType = "duplicate"    // 重复分配
	FindingAvailability FindingType = "availability" // 分配给不可上班的人员
	FindingStaffFloor   FindingType = "staff_floor"  // 人员班次数低于下限
	FindingShiftFloor   FindingType = "shift_floor"  // 班次人数低于下限
	FindingHeadcount    FindingType = "headcount"    // 班次人数超过容量
	FindingShiftCap     FindingType = "shift_cap"    // 人员班次数超过上限
	FindingExperience   FindingType = "experience"   // 班次缺少熟手
)

// Finding 审计发现
type Finding struct {
	Type     FindingType `json:"type"`
	Severity string      `json:"severity"` // error/warning
	StaffID  string      `json:"staff_id,omitempty"`
	ShiftID  string      `json:"shift_id,omitempty"`
	Message  string      `json:"message"`
}

// AuditConfig 审计器配置，按排班模型开启对应的检查项
type AuditConfig struct {
	CheckAvailability bool // 可用性约束（两个模型都启用）
	CheckStaffFloor   bool // 人员最少班次数（覆盖模型）
	CheckShiftFloor   bool // 班次最少人数（覆盖模型）
	CheckHeadcount    bool // 班次容量上限（公平模型）
	CheckShiftCap     bool // 个人班次上限（公平模型）
	CheckExperience   bool // 每班至少一名熟手（公平模型）
}

// CoverageAuditConfig 覆盖模型的审计配置
func CoverageAuditConfig() *AuditConfig {
	return &AuditConfig{
		CheckAvailability: true,
		CheckStaffFloor:   true,
		CheckShiftFloor:   true,
	}
}

// FairnessAuditConfig 公平模型的审计配置
func FairnessAuditConfig() *AuditConfig {
	return &AuditConfig{
		CheckAvailability: true,
		CheckHeadcount:    true,
		CheckShiftCap:     true,
		CheckExperience:   true,
	}
}

// AuditConfigFor 按排班模型返回审计配置
func AuditConfigFor(rosterType model.RosterType) *AuditConfig {
	switch rosterType {
	case model.RosterHelpdesk:
		return CoverageAuditConfig()
	case model.RosterLab:
		return FairnessAuditConfig()
	default:
		return &AuditConfig{CheckAvailability: true}
	}
}

// RosterAuditor 排班结果审计器
//
// 对求解器产出做独立复查。求解器本身保证约束满足，审计发现
// error 级别问题意味着建模或解码环节存在缺陷。
type RosterAuditor struct {
	config *AuditConfig
}

// NewRosterAuditor 创建审计器，config 为 nil 时只检查可用性
func NewRosterAuditor(config *AuditConfig) *RosterAuditor {
	if config == nil {
		config = &AuditConfig{CheckAvailability: true}
	}
	return &RosterAuditor{config: config}
}

// Audit 审计分配集，返回全部发现
func (r *RosterAuditor) Audit(problem *model.Problem, idx *availability.Index, assignments []model.Assignment) []Finding {
	var findings []Finding

	params := problem.Params.Normalize()
	byStaff := groupByStaff(assignments)
	byShift := groupByShift(assignments)

	findings = append(findings, r.auditDuplicates(assignments)...)

	if r.config.CheckAvailability {
		findings = append(findings, r.auditAvailability(idx, assignments)...)
	}
	if r.config.CheckStaffFloor {
		findings = append(findings, r.auditStaffFloors(problem, params, byStaff)...)
	}
	if r.config.CheckShiftFloor {
		findings = append(findings, r.auditShiftFloors(problem, params, byShift)...)
	}
	if r.config.CheckHeadcount {
		findings = append(findings, r.auditHeadcounts(problem, byShift)...)
	}
	if r.config.CheckShiftCap {
		findings = append(findings, r.auditShiftCaps(problem, params, byStaff)...)
	}
	if r.config.CheckExperience {
		findings = append(findings, r.auditExperience(problem, assignments)...)
	}

	return findings
}

// auditDuplicates 检测同一人员被重复分配到同一班次
func (r *RosterAuditor) auditDuplicates(assignments []model.Assignment) []Finding {
	var findings []Finding
	seen := make(map[model.Assignment]bool, len(assignments))
	for _, a := range assignments {
		if seen[a] {
			findings = append(findings, Finding{
				Type:     FindingDuplicate,
				Severity: "error",
				StaffID:  a.StaffID,
				ShiftID:  a.ShiftID,
				Message:  fmt.Sprintf("人员 %s 被重复分配到班次 %s", a.StaffID, a.ShiftID),
			})
		}
		seen[a] = true
	}
	return findings
}

// auditAvailability 检测分配是否落在可用对上
func (r *RosterAuditor) auditAvailability(idx *availability.Index, assignments []model.Assignment) []Finding {
	var findings []Finding
	if idx == nil {
		return findings
	}
	for _, a := range assignments {
		if !idx.IsAvailable(a.StaffID, a.ShiftID) {
			findings = append(findings, Finding{
				Type:     FindingAvailability,
				Severity: "error",
				StaffID:  a.StaffID,
				ShiftID:  a.ShiftID,
				Message:  fmt.Sprintf("人员 %s 在班次 %s 不可上班，却被分配", a.StaffID, a.ShiftID),
			})
		}
	}
	return findings
}

// auditStaffFloors 检测人员班次数是否达到下限
func (r *RosterAuditor) auditStaffFloors(problem *model.Problem, params model.Params, byStaff map[string]int) []Finding {
	var findings []Finding
	for _, st := range problem.Staff {
		floor := params.ShiftFloorFor(st)
		if got := byStaff[st.ID]; got < floor {
			findings = append(findings, Finding{
				Type:     FindingStaffFloor,
				Severity: "error",
				StaffID:  st.ID,
				Message:  fmt.Sprintf("人员 %s 仅分得 %d 个班次，低于下限 %d", st.ID, got, floor),
			})
		}
	}
	return findings
}

// auditShiftFloors 检测班次人数是否达到下限
func (r *RosterAuditor) auditShiftFloors(problem *model.Problem, params model.Params, byShift map[string]int) []Finding {
	var findings []Finding
	for _, sh := range problem.Shifts {
		if got := byShift[sh.ID]; got < params.MinStaffPerShift {
			findings = append(findings, Finding{
				Type:     FindingShiftFloor,
				Severity: "error",
				ShiftID:  sh.ID,
				Message:  fmt.Sprintf("班次 %s 仅有 %d 人在岗，低于下限 %d", sh.ID, got, params.MinStaffPerShift),
			})
		}
	}
	return findings
}

// auditHeadcounts 检测班次人数是否超过容量
func (r *RosterAuditor) auditHeadcounts(problem *model.Problem, byShift map[string]int) []Finding {
	var findings []Finding
	for _, sh := range problem.Shifts {
		if got := byShift[sh.ID]; got > sh.Headcount {
			findings = append(findings, Finding{
				Type:     FindingHeadcount,
				Severity: "error",
				ShiftID:  sh.ID,
				Message:  fmt.Sprintf("班次 %s 有 %d 人在岗，超过容量 %d", sh.ID, got, sh.Headcount),
			})
		}
	}
	return findings
}

// auditShiftCaps 检测人员班次数是否超过个人上限
func (r *RosterAuditor) auditShiftCaps(problem *model.Problem, params model.Params, byStaff map[string]int) []Finding {
	var findings []Finding
	for _, st := range problem.Staff {
		limit := params.ShiftCapFor(st)
		if got := byStaff[st.ID]; got > limit {
			findings = append(findings, Finding{
				Type:     FindingShiftCap,
				Severity: "error",
				StaffID:  st.ID,
				Message:  fmt.Sprintf("人员 %s 分得 %d 个班次，超过上限 %d", st.ID, got, limit),
			})
		}
	}
	return findings
}

// auditExperience 检测每个班次是否至少有一名熟手
func (r *RosterAuditor) auditExperience(problem *model.Problem, assignments []model.Assignment) []Finding {
	var findings []Finding
	staffByID := problem.StaffByID()

	experienced := make(map[string]int, len(problem.Shifts))
	for _, a := range assignments {
		st := staffByID[a.StaffID]
		if st != nil && !st.IsNew {
			experienced[a.ShiftID]++
		}
	}

	for _, sh := range problem.Shifts {
		if experienced[sh.ID] == 0 {
			findings = append(findings, Finding{
				Type:     FindingExperience,
				Severity: "error",
				ShiftID:  sh.ID,
				Message:  fmt.Sprintf("班次 %s 没有熟手在岗", sh.ID),
			})
		}
	}
	return findings
}

// groupByStaff 统计每个人员的分配数
func groupByStaff(assignments []model.Assignment) map[string]int {
	result := make(map[string]int)
	for _, a := range assignments {
		result[a.StaffID]++
	}
	return result
}

// groupByShift 统计每个班次的分配数
func groupByShift(assignments []model.Assignment) map[string]int {
	result := make(map[string]int)
	for _, a := range assignments {
		result[a.ShiftID]++
	}
	return result
}
