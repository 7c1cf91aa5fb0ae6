// Package model 定义排班求解引擎的核心数据模型
package model

// Staff 排班人员
//
// 每次求解由调用方只读传入，引擎不会修改。
type Staff struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name,omitempty"`
	IsNew bool   `json:"is_new"` // 新人标记，影响公平模型的班次上限

	// 每周最少班次数，0 表示使用问题级默认值
	MinShifts int `json:"min_shifts,omitempty" validate:"gte=0"`

	// 可承担的课程（覆盖模型使用）
	Courses []string `json:"courses,omitempty"`

	// 班次偏好分，0-10（公平模型使用）
	// key: 班次ID, value: 偏好分
	Preferences map[string]float64 `json:"preferences,omitempty" validate:"omitempty,dive,gte=0,lte=10"`
}

// Capable 检查人员是否可承担某课程
func (s *Staff) Capable(course string) bool {
	for _, c := range s.Courses {
		if c == course {
			return true
		}
	}
	return false
}

// PreferenceFor 返回人员对某班次的偏好分，未填写时为 0
func (s *Staff) PreferenceFor(shiftID string) float64 {
	return s.Preferences[shiftID]
}

// PreferenceMean 返回人员已填写偏好分的均值，未填写任何偏好时为 0
func (s *Staff) PreferenceMean() float64 {
	if len(s.Preferences) == 0 {
		return 0
	}
	var sum float64
	for _, p := range s.Preferences {
		sum += p
	}
	return sum / float64(len(s.Preferences))
}
