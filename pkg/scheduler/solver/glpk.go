// Package solver 封装 MILP 求解后端
package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/lukpank/go-glpk/glpk"

	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/milp"
)

// GLPKSolver 基于 GLPK 的求解适配器
//
// 每次 Solve 创建独立的 glpk.Prob 并在返回前释放，求解之间不共享
// 任何状态。绑定层不支持设置 MIP 时间限制，超时按求解后的墙钟时间
// 归类（上层不依赖内部中断）。
type GLPKSolver struct{}

// NewGLPKSolver 创建 GLPK 适配器
func NewGLPKSolver() *GLPKSolver {
	return &GLPKSolver{}
}

// Name 返回后端标识
func (s *GLPKSolver) Name() string {
	return "glpk"
}

// Solve 求解一个 MILP 模型
func (s *GLPKSolver) Solve(ctx context.Context, f *milp.Formulation, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	lp := glpk.New()
	defer lp.Delete()
	lp.SetProbName(f.Name)

	if f.Sense == milp.Maximize {
		lp.SetObjDir(glpk.ObjDir(glpk.MAX))
	} else {
		lp.SetObjDir(glpk.ObjDir(glpk.MIN))
	}

	// 变量列，下标转为 GLPK 的 1 基列号
	for i, v := range f.Variables {
		lp.AddCols(1)
		col := i + 1
		lp.SetColName(col, v.Name)
		if v.Kind == milp.Binary {
			lp.SetColKind(col, glpk.VarType(glpk.BV))
		} else {
			kind, lo, up := columnBounds(v.Lower, v.Upper)
			lp.SetColBnds(col, kind, lo, up)
		}
		if v.Cost != 0 {
			lp.SetObjCoef(col, v.Cost)
		}
	}

	// 约束行
	for r, c := range f.Constraints {
		lp.AddRows(1)
		row := r + 1
		lp.SetRowName(row, c.Name)
		switch c.Kind {
		case milp.LE:
			lp.SetRowBnds(row, glpk.BndsType(glpk.UP), 0, c.Upper)
		case milp.GE:
			lp.SetRowBnds(row, glpk.BndsType(glpk.LO), c.Lower, 0)
		case milp.EQ:
			lp.SetRowBnds(row, glpk.BndsType(glpk.FX), c.Lower, c.Upper)
		}
		if len(c.Terms) == 0 {
			// 空行保持零系数，边界本身即表达可满足性
			continue
		}
		ind := make([]int32, len(c.Terms))
		val := make([]float64, len(c.Terms))
		for k, t := range c.Terms {
			ind[k] = int32(t.Var + 1)
			val[k] = t.Coef
		}
		lp.SetMatRow(row, ind, val)
	}

	msgLev := glpk.MSG_ERR
	if opts.Verbose {
		msgLev = glpk.MSG_ON
	}

	smcp := glpk.NewSmcp()
	smcp.SetMsgLev(glpk.MsgLev(msgLev))

	// 先解 LP 松弛，松弛不可行即可断定整数模型不可行
	if err := lp.Simplex(smcp); err != nil {
		return s.failure(f, start, fmt.Sprintf("simplex 求解失败: %v", err)),
			fmt.Errorf("glpk simplex: %w", err)
	}

	if lp.Status() != glpk.OPT {
		switch lp.Status() {
		case glpk.NOFEAS, glpk.INFEAS:
			return s.classified(f, start, model.StatusInfeasible, 0, nil,
				"LP 松弛无可行解"), nil
		default:
			msg := fmt.Sprintf("LP 松弛未达最优，状态 %v", lp.Status())
			return s.failure(f, start, msg), fmt.Errorf("glpk: %s", msg)
		}
	}

	iocp := glpk.NewIocp()
	iocp.SetPresolve(true)
	iocp.SetMsgLev(glpk.MsgLev(msgLev))

	if err := lp.Intopt(iocp); err != nil {
		return s.failure(f, start, fmt.Sprintf("整数求解失败: %v", err)),
			fmt.Errorf("glpk intopt: %w", err)
	}

	elapsed := time.Since(start)
	overBudget := opts.TimeLimit > 0 && elapsed > opts.TimeLimit

	switch lp.MipStatus() {
	case glpk.OPT:
		return s.classified(f, start, model.StatusOptimal,
			lp.MipObjVal()+f.ObjConstant, s.values(lp, f), ""), nil
	case glpk.FEAS:
		msg := "得到可行解但未认证最优"
		if overBudget {
			msg = fmt.Sprintf("超出时间预算 %s，保留当前可行解", opts.TimeLimit)
		}
		return s.classified(f, start, model.StatusFeasible,
			lp.MipObjVal()+f.ObjConstant, s.values(lp, f), msg), nil
	case glpk.NOFEAS:
		return s.classified(f, start, model.StatusInfeasible, 0, nil, "整数模型无可行解"), nil
	default:
		msg := fmt.Sprintf("求解器返回未知状态 %v", lp.MipStatus())
		if overBudget {
			msg = fmt.Sprintf("超出时间预算 %s 且无可行解", opts.TimeLimit)
		}
		return s.failure(f, start, msg), fmt.Errorf("glpk: %s", msg)
	}
}

// values 提取全部变量取值
func (s *GLPKSolver) values(lp *glpk.Prob, f *milp.Formulation) []float64 {
	values := make([]float64, len(f.Variables))
	for i := range f.Variables {
		values[i] = lp.MipColVal(i + 1)
	}
	return values
}

// classified 组装归类后的结果
func (s *GLPKSolver) classified(f *milp.Formulation, start time.Time,
	status model.SolveStatus, objective float64, values []float64, msg string) *Result {
	r := &Result{
		Status:      status,
		Objective:   objective,
		Values:      values,
		Duration:    time.Since(start),
		Variables:   f.VariableCount(),
		Constraints: f.ConstraintCount(),
		Message:     msg,
	}
	logger.Debug().
		Str("backend", s.Name()).
		Str("status", string(status)).
		Dur("duration", r.Duration).
		Int("variables", r.Variables).
		Int("constraints", r.Constraints).
		Msg("求解完成")
	return r
}

// failure 组装故障结果，不携带任何变量取值
func (s *GLPKSolver) failure(f *milp.Formulation, start time.Time, msg string) *Result {
	return &Result{
		Status:      model.StatusError,
		Duration:    time.Since(start),
		Variables:   f.VariableCount(),
		Constraints: f.ConstraintCount(),
		Message:     msg,
	}
}

// columnBounds 把 IR 的上下界翻译成 GLPK 的边界类型
func columnBounds(lower, upper float64) (glpk.BndsType, float64, float64) {
	loInf := math.IsInf(lower, -1)
	upInf := math.IsInf(upper, 1)
	switch {
	case loInf && upInf:
		return glpk.BndsType(glpk.FR), 0, 0
	case loInf:
		return glpk.BndsType(glpk.UP), 0, upper
	case upInf:
		return glpk.BndsType(glpk.LO), lower, 0
	case lower == upper:
		return glpk.BndsType(glpk.FX), lower, upper
	default:
		return glpk.BndsType(glpk.DB), lower, upper
	}
}
