// Package model 定义排班求解引擎的核心数据模型
package model

import "time"

// Assignment 已求解的分配：人员 i 上班次 j（x[i,j] = 1）
type Assignment struct {
	StaffID string `json:"staff_id"`
	ShiftID string `json:"shift_id"`
}

// SolveStatus 求解状态
type SolveStatus string

const (
	// StatusOptimal 认证最优解
	StatusOptimal SolveStatus = "optimal"
	// StatusFeasible 可行但未认证最优（受时间限制）
	StatusFeasible SolveStatus = "feasible"
	// StatusInfeasible 无可行解
	StatusInfeasible SolveStatus = "infeasible"
	// StatusError 求解器故障
	StatusError SolveStatus = "error"
)

// Solved 检查状态是否携带可用的分配结果
func (s SolveStatus) Solved() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solution 求解结果与诊断元数据
type Solution struct {
	Status      SolveStatus   `json:"status"`
	Objective   float64       `json:"objective"`
	Assignments []Assignment  `json:"assignments"`
	Variables   int           `json:"variables"`
	Constraints int           `json:"constraints"`
	Duration    time.Duration `json:"duration"`
	Message     string        `json:"message,omitempty"`
}
