// Package milp 定义与求解后端无关的混合整数线性规划中间表示
//
// 排班模型负责构建 Formulation，求解适配器负责把它翻译给具体后端。
// 两侧只通过这里的结构交互，互相不知道对方的实现。
package milp

import "math"

// Sense 优化方向
type Sense int

const (
	// Minimize 最小化目标
	Minimize Sense = iota
	// Maximize 最大化目标
	Maximize
)

// VarKind 变量类型
type VarKind int

const (
	// Binary 0/1 变量
	Binary VarKind = iota
	// Continuous 连续变量
	Continuous
)

// BoundKind 约束边界类型
type BoundKind int

const (
	// LE 线性表达式 <= Upper
	LE BoundKind = iota
	// GE 线性表达式 >= Lower
	GE
	// EQ 线性表达式 = Lower
	EQ
)

// Variable 决策变量
type Variable struct {
	Name  string
	Kind  VarKind
	Lower float64 // Continuous 变量下界，math.Inf(-1) 表示无界
	Upper float64 // Continuous 变量上界，math.Inf(1) 表示无界
	Cost  float64 // 目标函数系数
}

// Term 线性项：Coef * x[Var]
type Term struct {
	Var  int
	Coef float64
}

// Constraint 线性约束
type Constraint struct {
	Name  string
	Group string // 约束组名，不可行诊断按组报告
	Terms []Term
	Kind  BoundKind
	Lower float64
	Upper float64
}

// Formulation 一个完整的 MILP 模型
type Formulation struct {
	Name  string
	Sense Sense

	// 目标函数常数项，不进入求解器，仅用于结果换算与报告
	ObjConstant float64

	Variables   []Variable
	Constraints []Constraint

	groupOrder []string
	groupSeen  map[string]bool
}

// NewFormulation 创建空模型
func NewFormulation(name string, sense Sense) *Formulation {
	return &Formulation{
		Name:      name,
		Sense:     sense,
		groupSeen: make(map[string]bool),
	}
}

// AddBinary 添加 0/1 变量，返回变量下标
func (f *Formulation) AddBinary(name string) int {
	f.Variables = append(f.Variables, Variable{
		Name:  name,
		Kind:  Binary,
		Lower: 0,
		Upper: 1,
	})
	return len(f.Variables) - 1
}

// AddContinuous 添加连续变量，返回变量下标
func (f *Formulation) AddContinuous(name string, lower, upper float64) int {
	f.Variables = append(f.Variables, Variable{
		Name:  name,
		Kind:  Continuous,
		Lower: lower,
		Upper: upper,
	})
	return len(f.Variables) - 1
}

// AddFree 添加无界连续变量，返回变量下标
func (f *Formulation) AddFree(name string) int {
	return f.AddContinuous(name, math.Inf(-1), math.Inf(1))
}

// SetObjCoef 设置变量的目标函数系数
func (f *Formulation) SetObjCoef(v int, coef float64) {
	f.Variables[v].Cost = coef
}

// AddObjCoef 累加变量的目标函数系数
//
// 覆盖模型里同一个分配变量会为多门课程贡献目标系数，因此用累加。
func (f *Formulation) AddObjCoef(v int, coef float64) {
	f.Variables[v].Cost += coef
}

// AddLE 添加 <= 约束
func (f *Formulation) AddLE(name, group string, terms []Term, upper float64) {
	f.addConstraint(Constraint{Name: name, Group: group, Terms: terms, Kind: LE, Upper: upper})
}

// AddGE 添加 >= 约束
func (f *Formulation) AddGE(name, group string, terms []Term, lower float64) {
	f.addConstraint(Constraint{Name: name, Group: group, Terms: terms, Kind: GE, Lower: lower})
}

// AddEQ 添加 = 约束
func (f *Formulation) AddEQ(name, group string, terms []Term, value float64) {
	f.addConstraint(Constraint{Name: name, Group: group, Terms: terms, Kind: EQ, Lower: value, Upper: value})
}

func (f *Formulation) addConstraint(c Constraint) {
	f.Constraints = append(f.Constraints, c)
	if c.Group != "" && !f.groupSeen[c.Group] {
		f.groupSeen[c.Group] = true
		f.groupOrder = append(f.groupOrder, c.Group)
	}
}

// VariableCount 返回变量数
func (f *Formulation) VariableCount() int {
	return len(f.Variables)
}

// ConstraintCount 返回约束数
func (f *Formulation) ConstraintCount() int {
	return len(f.Constraints)
}

// Groups 返回出现过的约束组名，按首次出现顺序
func (f *Formulation) Groups() []string {
	out := make([]string, len(f.groupOrder))
	copy(out, f.groupOrder)
	return out
}

// GroupSizes 返回每个约束组的约束数
func (f *Formulation) GroupSizes() map[string]int {
	sizes := make(map[string]int)
	for _, c := range f.Constraints {
		if c.Group != "" {
			sizes[c.Group]++
		}
	}
	return sizes
}
