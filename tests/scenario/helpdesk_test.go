// Package scenario 提供场景测试
package scenario

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
)

// TestHelpdeskWeeklySchedule 答疑台一周排班测试
//
// 4 名可辅导 COMP101 的值班员排 3 个班次，每班期望 2 人。
// 覆盖缺口应被完全消除，目标值为 0。
func TestHelpdeskWeeklySchedule(t *testing.T) {
	staff := []*model.Staff{
		createTutor("A", "张三", []string{"COMP101"}),
		createTutor("B", "李四", []string{"COMP101"}),
		createTutor("C", "王五", []string{"COMP101"}),
		createTutor("D", "赵六", []string{"COMP101"}),
	}
	shifts := []*model.Shift{
		createHelpdeskShift("S1", "Mon", map[string]int{"COMP101": 2}),
		createHelpdeskShift("S2", "Wed", map[string]int{"COMP101": 2}),
		createHelpdeskShift("S3", "Fri", map[string]int{"COMP101": 2}),
	}

	problem := &model.Problem{
		Staff:        staff,
		Shifts:       shifts,
		Availability: fullAvailability(staff, shifts),
		Params: model.Params{
			MinShiftsPerStaff: 1,
			MinStaffPerShift:  2,
		},
	}

	engine := scheduler.NewEngine(nil)
	schedule, err := engine.GenerateSchedule(context.Background(), problem, model.RosterHelpdesk, 30*time.Second)
	if err != nil {
		t.Fatalf("排班求解失败: %v", err)
	}

	t.Logf("求解状态: %s", schedule.Status)
	t.Logf("总分配数: %d", schedule.Stats.TotalAssignments)
	t.Logf("班次覆盖率: %.1f%%", schedule.Stats.CoverageRate)
	t.Logf("目标值: %.4f", schedule.Stats.Objective)

	if schedule.Status != model.StatusOptimal {
		t.Fatalf("Status = %v, expected optimal", schedule.Status)
	}

	// 每班恰好 2 人: 覆盖封顶与人数下限同为 2
	if schedule.Stats.TotalAssignments != 6 {
		t.Errorf("总分配数 = %d, expected 6", schedule.Stats.TotalAssignments)
	}
	if schedule.Stats.CoverageRate != 100 {
		t.Errorf("覆盖率 = %v, expected 100", schedule.Stats.CoverageRate)
	}
	// 缺口被完全消除
	if math.Abs(schedule.Stats.Objective) > 1e-6 {
		t.Errorf("目标值 = %v, expected 0", schedule.Stats.Objective)
	}

	// 每人至少 1 个班次
	for _, st := range staff {
		if schedule.Stats.ShiftsByStaff[st.ID] < 1 {
			t.Errorf("人员 %s 班次数 = %d, 低于下限 1", st.ID, schedule.Stats.ShiftsByStaff[st.ID])
		}
	}

	// 一天一个班次，按输入顺序
	if len(schedule.Days) != 3 {
		t.Fatalf("len(Days) = %d, expected 3", len(schedule.Days))
	}
	for _, day := range schedule.Days {
		for _, sh := range day.Shifts {
			if len(sh.Staff) != 2 {
				t.Errorf("班次 %s 在岗 %d 人, expected 2", sh.ShiftID, len(sh.Staff))
			}
		}
	}
}

func createTutor(id, name string, courses []string) *model.Staff {
	return &model.Staff{
		ID:      id,
		Name:    name,
		Courses: courses,
	}
}

func createHelpdeskShift(id, day string, demand map[string]int) *model.Shift {
	return &model.Shift{
		ID:     id,
		Day:    day,
		Start:  "14:00",
		End:    "18:00",
		Demand: demand,
	}
}

// fullAvailability 生成全员全班可用的记录
func fullAvailability(staff []*model.Staff, shifts []*model.Shift) []model.AvailabilityRecord {
	var records []model.AvailabilityRecord
	for _, st := range staff {
		for _, sh := range shifts {
			records = append(records, model.AvailabilityRecord{
				StaffID:   st.ID,
				ShiftID:   sh.ID,
				Available: true,
			})
		}
	}
	return records
}
