// Package catalog 排班模型目录
package catalog

// ModelParam 模型参数定义
type ModelParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, string, bool
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// ConstraintFamily 约束族定义
type ConstraintFamily struct {
	Group       string `json:"group"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"` // hard 硬约束, soft 软约束
	Description string `json:"description"`
}

// ModelDefinition 排班模型定义
type ModelDefinition struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	Objective   string             `json:"objective"`
	Sense       string             `json:"sense"` // minimize, maximize
	Description string             `json:"description"`
	Scenarios   []string           `json:"scenarios"`
	Constraints []ConstraintFamily `json:"constraints"`
	Params      []ModelParam       `json:"params"`
}

// CatalogResponse 模型目录响应
type CatalogResponse struct {
	Models []ModelDefinition `json:"models"`
}

// GetCatalog 获取完整的模型目录
func GetCatalog() []ModelDefinition {
	return []ModelDefinition{
		{
			Name:        "helpdesk",
			DisplayName: "覆盖模型",
			Objective:   "最小化加权课程覆盖缺口",
			Sense:       "minimize",
			Description: "面向答疑台类场景：每个班次对各门课程有期望的辅导人数，目标是让实际在岗的胜任人数尽量贴近期望。覆盖缺口按课程权重加权，权重缺省等于期望人数。",
			Scenarios:   []string{"helpdesk", "tutoring", "support"},
			Constraints: []ConstraintFamily{
				{
					Group:       "course_coverage_cap",
					DisplayName: "课程覆盖封顶",
					Type:        "hard",
					Description: "每个班次每门课程的计入覆盖人数不超过期望人数，多出的人不再降低目标值。",
				},
				{
					Group:       "staff_min_shifts",
					DisplayName: "人员最少班次数",
					Type:        "hard",
					Description: "每名人员每周至少分得指定数量的班次，人员级设置优先于问题级默认。",
				},
				{
					Group:       "shift_min_staffing",
					DisplayName: "班次最少人数",
					Type:        "hard",
					Description: "每个班次至少安排指定数量的人员在岗。",
				},
			},
			Params: []ModelParam{
				{Name: "min_shifts_per_staff", Type: "int", Description: "每人每周最少班次数", Default: "4", Min: "0"},
				{Name: "min_staff_per_shift", Type: "int", Description: "每班次最少人数", Default: "2", Min: "0"},
			},
		},
		{
			Name:        "lab",
			DisplayName: "公平模型",
			Objective:   "最大化最差人员的归一化偏好满足度",
			Sense:       "maximize",
			Description: "面向实验室值班类场景：人员对班次有 0 到 10 的偏好分，目标是抬高过得最差的那个人的满足度下限，而不是最大化总满足度。偏好分先中心化再按个人班次上限归一。",
			Scenarios:   []string{"lab", "duty", "oncall"},
			Constraints: []ConstraintFamily{
				{
					Group:       "fairness_floor",
					DisplayName: "公平下界",
					Type:        "hard",
					Description: "引入辅助变量 L，约束 L 不超过任何人员的加权偏好和，目标即最大化 L。",
				},
				{
					Group:       "shift_headcount_cap",
					DisplayName: "班次容量上限",
					Type:        "hard",
					Description: "每个班次的在岗人数不超过其容量。",
				},
				{
					Group:       "staff_shift_cap",
					DisplayName: "个人班次上限",
					Type:        "hard",
					Description: "熟手与新人分别有每周班次数上限，防止个别人被排满。",
				},
				{
					Group:       "experienced_presence",
					DisplayName: "熟手在岗保障",
					Type:        "hard",
					Description: "每个班次至少有一名非新人在岗。",
				},
			},
			Params: []ModelParam{
				{Name: "max_shifts_experienced", Type: "int", Description: "熟手班次上限", Default: "3", Min: "1"},
				{Name: "max_shifts_new", Type: "int", Description: "新人班次上限", Default: "1", Min: "1"},
			},
		},
	}
}

// GetModel 按名称查找模型定义
func GetModel(name string) (*ModelDefinition, bool) {
	for _, def := range GetCatalog() {
		if def.Name == name {
			return &def, true
		}
	}
	return nil, false
}
