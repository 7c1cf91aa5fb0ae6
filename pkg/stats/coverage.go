// Package stats 提供排班统计分析功能
//
// 所有指标都只从分配集推导，可独立于求解器重算，因此可以直接
// 用来验证求解结果的一致性。
package stats

import (
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
)

// CourseCoverage 单门课程的覆盖情况
type CourseCoverage struct {
	Demand   int     `json:"demand"`    // 期望人数合计
	Covered  int     `json:"covered"`   // 实际覆盖人数合计（按期望人数封顶）
	FillRate float64 `json:"fill_rate"` // 覆盖率 (%)
}

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	TotalShifts      int     `json:"total_shifts"`      // 总班次数
	CoveredShifts    int     `json:"covered_shifts"`    // 至少 1 人在岗的班次数
	CoverageRate     float64 `json:"coverage_rate"`     // 班次覆盖率 (%)
	TotalAssignments int     `json:"total_assignments"` // 分配总数

	// 按课程统计（覆盖模型）
	CourseFill map[string]CourseCoverage `json:"course_fill,omitempty"`

	// 无人在岗的班次ID，保持传入班次顺序
	UncoveredShifts []string `json:"uncovered_shifts,omitempty"`

	// 目标口径的加权覆盖缺口：sum_j sum_k w[j,k] * max(0, demand - covered)
	WeightedShortfall float64 `json:"weighted_shortfall"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 从分配集重算覆盖指标
func (c *CoverageAnalyzer) Analyze(shifts []*model.Shift, staff []*model.Staff, assignments []model.Assignment) *CoverageMetrics {
	metrics := &CoverageMetrics{
		TotalShifts: len(shifts),
		CourseFill:  make(map[string]CourseCoverage),
	}
	if len(shifts) == 0 {
		metrics.CoverageRate = 100
		return metrics
	}

	staffByID := make(map[string]*model.Staff, len(staff))
	for _, s := range staff {
		staffByID[s.ID] = s
	}

	// 班次 → 在岗人员
	assignedTo := make(map[string][]*model.Staff)
	for _, a := range assignments {
		if st := staffByID[a.StaffID]; st != nil {
			assignedTo[a.ShiftID] = append(assignedTo[a.ShiftID], st)
		}
		metrics.TotalAssignments++
	}

	courseDemand := make(map[string]int)
	courseCovered := make(map[string]int)

	for _, sh := range shifts {
		onDuty := assignedTo[sh.ID]
		if len(onDuty) > 0 {
			metrics.CoveredShifts++
		} else {
			metrics.UncoveredShifts = append(metrics.UncoveredShifts, sh.ID)
		}

		for _, course := range sh.Courses() {
			demand := sh.Demand[course]
			if demand <= 0 {
				continue
			}
			capable := 0
			for _, st := range onDuty {
				if st.Capable(course) {
					capable++
				}
			}
			covered := capable
			if covered > demand {
				covered = demand
			}
			courseDemand[course] += demand
			courseCovered[course] += covered
			metrics.WeightedShortfall += sh.DemandWeight(course) * float64(demand-covered)
		}
	}

	metrics.CoverageRate = float64(metrics.CoveredShifts) / float64(metrics.TotalShifts) * 100

	courses := make([]string, 0, len(courseDemand))
	for course := range courseDemand {
		courses = append(courses, course)
	}
	sort.Strings(courses)
	for _, course := range courses {
		demand := courseDemand[course]
		covered := courseCovered[course]
		fill := 100.0
		if demand > 0 {
			fill = float64(covered) / float64(demand) * 100
		}
		metrics.CourseFill[course] = CourseCoverage{
			Demand:   demand,
			Covered:  covered,
			FillRate: fill,
		}
	}

	return metrics
}
