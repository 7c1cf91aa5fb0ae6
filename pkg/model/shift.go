// Package model 定义排班求解引擎的核心数据模型
package model

import (
	"sort"
	"time"
)

// Shift 班次槽位
//
// Day/Start/End 仅用于展示与工时统计；排序以调用方传入的班次顺序为准，
// 引擎任何环节都不得按派生键重排。
type Shift struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name,omitempty"`
	Day   string `json:"day" validate:"required"`
	Start string `json:"start" validate:"required"` // HH:MM
	End   string `json:"end" validate:"required"`   // HH:MM

	// 课程 → 期望人数（覆盖模型使用）
	Demand map[string]int `json:"demand,omitempty" validate:"omitempty,dive,gte=0"`

	// 课程 → 覆盖权重，缺省时取该课程的期望人数（覆盖模型使用）
	Weight map[string]float64 `json:"weight,omitempty" validate:"omitempty,dive,gte=0"`

	// 期望人数上限（公平模型使用）
	Headcount int `json:"headcount,omitempty" validate:"gte=0"`
}

// Hours 返回班次时长（小时），跨午夜班次按次日结束计算
func (s *Shift) Hours() float64 {
	start, err1 := time.Parse("15:04", s.Start)
	end, err2 := time.Parse("15:04", s.End)
	if err1 != nil || err2 != nil {
		return 0
	}
	d := end.Sub(start)
	if d <= 0 {
		d += 24 * time.Hour
	}
	return d.Hours()
}

// Courses 返回该班次有需求的课程，按名称排序以保证遍历顺序稳定
func (s *Shift) Courses() []string {
	courses := make([]string, 0, len(s.Demand))
	for c := range s.Demand {
		courses = append(courses, c)
	}
	sort.Strings(courses)
	return courses
}

// DemandWeight 返回课程的覆盖权重，未显式指定时取期望人数
func (s *Shift) DemandWeight(course string) float64 {
	if w, ok := s.Weight[course]; ok {
		return w
	}
	return float64(s.Demand[course])
}
