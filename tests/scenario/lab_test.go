package scenario

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler"
)

// TestLabFairnessSchedule 实验室公平排班测试
//
// 两名老成员偏好完全互补，每班限 1 人。
// 最差满足度最大化应让每人拿到自己的心仪班次。
func TestLabFairnessSchedule(t *testing.T) {
	staff := []*model.Staff{
		createLabMember("A", "张三", false, map[string]float64{"S1": 10, "S2": 0}),
		createLabMember("B", "李四", false, map[string]float64{"S1": 0, "S2": 10}),
	}
	shifts := []*model.Shift{
		createLabShift("S1", "Tue", 1),
		createLabShift("S2", "Thu", 1),
	}

	problem := &model.Problem{
		Staff:        staff,
		Shifts:       shifts,
		Availability: fullAvailability(staff, shifts),
	}

	engine := scheduler.NewEngine(nil)
	schedule, err := engine.GenerateSchedule(context.Background(), problem, model.RosterLab, 30*time.Second)
	if err != nil {
		t.Fatalf("排班求解失败: %v", err)
	}

	t.Logf("求解状态: %s", schedule.Status)
	t.Logf("目标值: %.4f", schedule.Stats.Objective)
	t.Logf("工时基尼系数: %.4f", schedule.Stats.WorkloadGini)

	if schedule.Status != model.StatusOptimal {
		t.Fatalf("Status = %v, expected optimal", schedule.Status)
	}

	// 偏好互补时唯一最优解：各取所好
	assignments := assignmentsByShift(schedule)
	if got := assignments["S1"]; len(got) != 1 || got[0] != "A" {
		t.Errorf("S1 在岗 = %v, expected [A]", got)
	}
	if got := assignments["S2"]; len(got) != 1 || got[0] != "B" {
		t.Errorf("S2 在岗 = %v, expected [B]", got)
	}

	// 最差满足度 = (10 - 5 + 5) / 3
	if math.Abs(schedule.Stats.Objective-10.0/3) > 1e-6 {
		t.Errorf("目标值 = %v, expected %v", schedule.Stats.Objective, 10.0/3)
	}

	// 两人各 1 班，工时完全均衡
	if schedule.Stats.WorkloadGini != 0 {
		t.Errorf("工时基尼系数 = %v, expected 0", schedule.Stats.WorkloadGini)
	}
}

func createLabMember(id, name string, isNew bool, prefs map[string]float64) *model.Staff {
	return &model.Staff{
		ID:          id,
		Name:        name,
		IsNew:       isNew,
		Preferences: prefs,
	}
}

func createLabShift(id, day string, headcount int) *model.Shift {
	return &model.Shift{
		ID:        id,
		Day:       day,
		Start:     "19:00",
		End:       "22:00",
		Headcount: headcount,
	}
}

// assignmentsByShift 摊平排班表，便于按班次断言
func assignmentsByShift(schedule *model.RenderedSchedule) map[string][]string {
	result := make(map[string][]string)
	for _, day := range schedule.Days {
		for _, sh := range day.Shifts {
			for _, st := range sh.Staff {
				result[sh.ShiftID] = append(result[sh.ShiftID], st.StaffID)
			}
		}
	}
	return result
}
