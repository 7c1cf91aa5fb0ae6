package stats

import (
	"math"
	"testing"

	"github.com/zhiban/zhiban/pkg/model"
)

func TestWorkloadAnalyzer_Analyze(t *testing.T) {
	shifts := []*model.Shift{
		{ID: "S1", Day: "Mon", Start: "09:00", End: "13:00"},
		{ID: "S2", Day: "Tue", Start: "14:00", End: "16:00"},
	}
	staff := []*model.Staff{
		{ID: "A", Name: "张三"},
		{ID: "B", Name: "李四"},
		{ID: "C", Name: "王五"},
	}
	assignments := []model.Assignment{
		{StaffID: "A", ShiftID: "S1"},
		{StaffID: "A", ShiftID: "S2"},
		{StaffID: "B", ShiftID: "S1"},
	}

	m := NewWorkloadAnalyzer().Analyze(shifts, staff, assignments)

	// 未被分配的 C 也计入，工时为 0
	if m.HoursByStaff["A"] != 6 || m.HoursByStaff["B"] != 4 || m.HoursByStaff["C"] != 0 {
		t.Errorf("HoursByStaff = %v", m.HoursByStaff)
	}
	if m.ShiftsByStaff["A"] != 2 || m.ShiftsByStaff["B"] != 1 || m.ShiftsByStaff["C"] != 0 {
		t.Errorf("ShiftsByStaff = %v", m.ShiftsByStaff)
	}

	if math.Abs(m.AvgHours-10.0/3) > 1e-9 {
		t.Errorf("AvgHours = %v, expected 3.33", m.AvgHours)
	}
	if m.MaxHours != 6 || m.MinHours != 0 || m.HoursRange != 6 {
		t.Errorf("Max/Min/Range = %v/%v/%v", m.MaxHours, m.MinHours, m.HoursRange)
	}

	// 排序后 [0,4,6]: G = (-2*0 + 0*4 + 2*6) / (3*10) = 0.4
	if math.Abs(m.WorkloadGini-0.4) > 1e-9 {
		t.Errorf("WorkloadGini = %v, expected 0.4", m.WorkloadGini)
	}

	// 明细按工时降序
	if len(m.StaffStats) != 3 {
		t.Fatalf("len(StaffStats) = %d, expected 3", len(m.StaffStats))
	}
	if m.StaffStats[0].StaffID != "A" || m.StaffStats[1].StaffID != "B" || m.StaffStats[2].StaffID != "C" {
		t.Errorf("明细顺序 = [%s %s %s], expected [A B C]",
			m.StaffStats[0].StaffID, m.StaffStats[1].StaffID, m.StaffStats[2].StaffID)
	}
	if math.Abs(m.StaffStats[0].Deviation-80) > 1e-9 {
		t.Errorf("A.Deviation = %v, expected 80", m.StaffStats[0].Deviation)
	}
	if math.Abs(m.StaffStats[2].Deviation-(-100)) > 1e-9 {
		t.Errorf("C.Deviation = %v, expected -100", m.StaffStats[2].Deviation)
	}
}

func TestWorkloadAnalyzer_Analyze_Balanced(t *testing.T) {
	shifts := []*model.Shift{
		{ID: "S1", Day: "Mon", Start: "09:00", End: "13:00"},
		{ID: "S2", Day: "Tue", Start: "09:00", End: "13:00"},
	}
	staff := []*model.Staff{{ID: "A"}, {ID: "B"}}
	assignments := []model.Assignment{
		{StaffID: "A", ShiftID: "S1"},
		{StaffID: "B", ShiftID: "S2"},
	}

	m := NewWorkloadAnalyzer().Analyze(shifts, staff, assignments)

	if m.WorkloadGini != 0 {
		t.Errorf("完全均衡时 Gini = %v, expected 0", m.WorkloadGini)
	}
	if m.StdDev != 0 {
		t.Errorf("完全均衡时 StdDev = %v, expected 0", m.StdDev)
	}
	if m.BalanceScore != 100 {
		t.Errorf("BalanceScore = %v, expected 100", m.BalanceScore)
	}

	// 工时相同按员工ID升序
	if m.StaffStats[0].StaffID != "A" || m.StaffStats[1].StaffID != "B" {
		t.Errorf("并列时应按ID排序: [%s %s]", m.StaffStats[0].StaffID, m.StaffStats[1].StaffID)
	}
}

func TestWorkloadAnalyzer_Analyze_UnknownRefsSkipped(t *testing.T) {
	shifts := []*model.Shift{
		{ID: "S1", Day: "Mon", Start: "09:00", End: "13:00"},
	}
	staff := []*model.Staff{{ID: "A"}}
	assignments := []model.Assignment{
		{StaffID: "A", ShiftID: "S99"},
		{StaffID: "ghost", ShiftID: "S1"},
	}

	m := NewWorkloadAnalyzer().Analyze(shifts, staff, assignments)

	if m.HoursByStaff["A"] != 0 || m.ShiftsByStaff["A"] != 0 {
		t.Errorf("未知引用不应计入工作量: %v", m.HoursByStaff)
	}
	if _, ok := m.HoursByStaff["ghost"]; ok {
		t.Error("未知员工不应出现在统计里")
	}
}

func TestWorkloadAnalyzer_Analyze_NoStaff(t *testing.T) {
	m := NewWorkloadAnalyzer().Analyze(nil, nil, nil)

	if m.BalanceScore != 100 {
		t.Errorf("BalanceScore = %v, expected 100", m.BalanceScore)
	}
	if len(m.StaffStats) != 0 {
		t.Errorf("StaffStats = %v, expected 空", m.StaffStats)
	}
}

func TestCalculateGini(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "完全均衡", values: []float64{4, 4, 4}, want: 0},
		{name: "完全集中", values: []float64{0, 0, 12}, want: 2.0 / 3},
		{name: "全零", values: []float64{0, 0}, want: 0},
		{name: "空输入", values: nil, want: 0},
		{name: "单人", values: []float64{5}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateGini(tt.values); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("calculateGini(%v) = %v, expected %v", tt.values, got, tt.want)
			}
		})
	}
}
