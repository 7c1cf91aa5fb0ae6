package stats

import (
	"math"
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
)

// StaffWorkload 单个员工的工作量
type StaffWorkload struct {
	StaffID    string  `json:"staff_id"`
	Name       string  `json:"name"`
	ShiftCount int     `json:"shift_count"`
	TotalHours float64 `json:"total_hours"`
	Deviation  float64 `json:"deviation"` // 相对平均工时的偏差 (%)
}

// WorkloadMetrics 工作量均衡指标
type WorkloadMetrics struct {
	HoursByStaff  map[string]float64 `json:"hours_by_staff"`
	ShiftsByStaff map[string]int     `json:"shifts_by_staff"`

	AvgHours   float64 `json:"avg_hours"`
	MaxHours   float64 `json:"max_hours"`
	MinHours   float64 `json:"min_hours"`
	HoursRange float64 `json:"hours_range"`
	StdDev     float64 `json:"std_dev"`

	// 工时基尼系数（0=完全均衡，1=完全不均）
	WorkloadGini float64 `json:"workload_gini"`

	// 综合均衡得分 (0-100，越高越均衡)
	BalanceScore float64 `json:"balance_score"`

	// 按工时降序的员工明细
	StaffStats []StaffWorkload `json:"staff_stats"`
}

// WorkloadAnalyzer 工作量均衡分析器
type WorkloadAnalyzer struct{}

// NewWorkloadAnalyzer 创建工作量分析器
func NewWorkloadAnalyzer() *WorkloadAnalyzer {
	return &WorkloadAnalyzer{}
}

// Analyze 从分配集重算工作量指标
//
// 未被分配任何班次的员工也计入统计，工时为 0，否则均衡度会被高估。
func (w *WorkloadAnalyzer) Analyze(shifts []*model.Shift, staff []*model.Staff, assignments []model.Assignment) *WorkloadMetrics {
	metrics := &WorkloadMetrics{
		HoursByStaff:  make(map[string]float64),
		ShiftsByStaff: make(map[string]int),
	}
	if len(staff) == 0 {
		metrics.BalanceScore = 100
		return metrics
	}

	shiftByID := make(map[string]*model.Shift, len(shifts))
	for _, sh := range shifts {
		shiftByID[sh.ID] = sh
	}

	for _, s := range staff {
		metrics.HoursByStaff[s.ID] = 0
		metrics.ShiftsByStaff[s.ID] = 0
	}
	for _, a := range assignments {
		sh := shiftByID[a.ShiftID]
		if sh == nil {
			continue
		}
		if _, ok := metrics.HoursByStaff[a.StaffID]; !ok {
			continue
		}
		metrics.HoursByStaff[a.StaffID] += sh.Hours()
		metrics.ShiftsByStaff[a.StaffID]++
	}

	hours := make([]float64, 0, len(staff))
	for _, s := range staff {
		hours = append(hours, metrics.HoursByStaff[s.ID])
	}

	metrics.AvgHours = calculateMean(hours)
	metrics.MaxHours, metrics.MinHours = calculateMaxMin(hours)
	metrics.HoursRange = metrics.MaxHours - metrics.MinHours
	metrics.StdDev = math.Sqrt(calculateVariance(hours, metrics.AvgHours))
	metrics.WorkloadGini = calculateGini(hours)
	metrics.BalanceScore = calculateBalanceScore(metrics)

	for _, s := range staff {
		total := metrics.HoursByStaff[s.ID]
		deviation := 0.0
		if metrics.AvgHours > 0 {
			deviation = (total - metrics.AvgHours) / metrics.AvgHours * 100
		}
		metrics.StaffStats = append(metrics.StaffStats, StaffWorkload{
			StaffID:    s.ID,
			Name:       s.Name,
			ShiftCount: metrics.ShiftsByStaff[s.ID],
			TotalHours: total,
			Deviation:  deviation,
		})
	}
	sort.Slice(metrics.StaffStats, func(i, j int) bool {
		if metrics.StaffStats[i].TotalHours != metrics.StaffStats[j].TotalHours {
			return metrics.StaffStats[i].TotalHours > metrics.StaffStats[j].TotalHours
		}
		return metrics.StaffStats[i].StaffID < metrics.StaffStats[j].StaffID
	})

	return metrics
}

// calculateMean 计算平均值
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance 计算方差
func calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return sum / float64(len(values))
}

// calculateMaxMin 计算最大值和最小值
func calculateMaxMin(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	maxVal, minVal := values[0], values[0]
	for _, v := range values[1:] {
		if v > maxVal {
			maxVal = v
		}
		if v < minVal {
			minVal = v
		}
	}
	return maxVal, minVal
}

// calculateGini 计算基尼系数
//
// 使用排序后的标准公式: G = sum((2i - n - 1) * x_i) / (n * sum(x))
func calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	weightedSum := 0.0
	for i, v := range sorted {
		sum += v
		weightedSum += float64(2*(i+1)-n-1) * v
	}
	if sum == 0 {
		return 0
	}

	gini := weightedSum / (float64(n) * sum)
	if gini < 0 {
		gini = 0
	}
	if gini > 1 {
		gini = 1
	}
	return gini
}

// calculateBalanceScore 计算综合均衡得分 (0-100)
//
// 基尼系数权重 0.6，变异系数权重 0.4。
func calculateBalanceScore(m *WorkloadMetrics) float64 {
	giniScore := (1 - m.WorkloadGini) * 100

	cvScore := 100.0
	if m.AvgHours > 0 {
		cv := m.StdDev / m.AvgHours
		cvScore = math.Max(0, (1-cv)*100)
	}

	return giniScore*0.6 + cvScore*0.4
}
