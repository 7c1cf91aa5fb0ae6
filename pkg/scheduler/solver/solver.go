// Package solver 封装 MILP 求解后端
//
// 适配器接收 milp.Formulation，调用具体后端求解，并把结果归类为
// 最优/可行/不可行/故障四种状态。后端故障时绝不返回残缺的变量取值。
package solver

import (
	"context"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/milp"
)

// Options 单次求解配置
//
// 按调用传入而不是进程级共享，保证并发求解互不干扰。
type Options struct {
	// TimeLimit 求解时间预算，0 表示不限制
	TimeLimit time.Duration
	// Verbose 输出后端求解日志
	Verbose bool
}

// Result 求解结果
type Result struct {
	Status    model.SolveStatus
	Objective float64
	// Values 与 Formulation.Variables 一一对应的变量取值，
	// 仅在 Status 为 optimal/feasible 时填充
	Values      []float64
	Duration    time.Duration
	Variables   int
	Constraints int
	Message     string
}

// Solver 求解后端契约
type Solver interface {
	// Solve 求解一个 MILP 模型
	Solve(ctx context.Context, f *milp.Formulation, opts Options) (*Result, error)
	// Name 返回后端标识
	Name() string
}
