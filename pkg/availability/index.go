// Package availability 提供人员×班次的可用性索引
//
// 索引是每次求解构建一次的只读快照：构建 O(records)，查询均摊 O(1)。
// 它是决策变量存在与否的唯一闸门，不可用的 (人员, 班次) 对根本不会进入模型。
package availability

import (
	"sort"

	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
)

// Query 单条可用性查询
type Query struct {
	StaffID string `json:"staff_id"`
	ShiftID string `json:"shift_id"`
}

type pairKey struct {
	staff string
	shift string
}

// Index 可用性索引
type Index struct {
	pairs     map[pairKey]bool
	byStaff   map[string][]string
	byShift   map[string][]string
	available int
	conflicts int
}

// BuildIndex 从可用性记录构建索引
//
// 重复记录按后写入为准去重；值相互矛盾的重复记录记一次警告日志，
// 任何情况下都不视为致命错误。
func BuildIndex(records []model.AvailabilityRecord) *Index {
	idx := &Index{
		pairs:   make(map[pairKey]bool, len(records)),
		byStaff: make(map[string][]string),
		byShift: make(map[string][]string),
	}

	for _, r := range records {
		k := pairKey{staff: r.StaffID, shift: r.ShiftID}
		if prev, seen := idx.pairs[k]; seen {
			idx.conflicts++
			if prev != r.Available {
				logger.Warn().
					Str("staff_id", r.StaffID).
					Str("shift_id", r.ShiftID).
					Bool("kept", r.Available).
					Msg("可用性记录矛盾，以后写入为准")
			}
		}
		idx.pairs[k] = r.Available
	}

	for k, ok := range idx.pairs {
		if !ok {
			continue
		}
		idx.available++
		idx.byStaff[k.staff] = append(idx.byStaff[k.staff], k.shift)
		idx.byShift[k.shift] = append(idx.byShift[k.shift], k.staff)
	}

	// 派生集合排序，保证同一份记录重建出的索引完全一致
	for _, shifts := range idx.byStaff {
		sort.Strings(shifts)
	}
	for _, staff := range idx.byShift {
		sort.Strings(staff)
	}

	return idx
}

// IsAvailable 检查人员是否可上某班次
func (idx *Index) IsAvailable(staffID, shiftID string) bool {
	return idx.pairs[pairKey{staff: staffID, shift: shiftID}]
}

// AvailableShiftsFor 返回人员可上的全部班次ID，按ID排序
//
// 返回的切片是索引内部状态，调用方只读。
func (idx *Index) AvailableShiftsFor(staffID string) []string {
	return idx.byStaff[staffID]
}

// AvailableStaffFor 返回可上某班次的全部人员ID，按ID排序
func (idx *Index) AvailableStaffFor(shiftID string) []string {
	return idx.byShift[shiftID]
}

// CheckBatch 批量回答可用性查询，结果与查询一一对应
func (idx *Index) CheckBatch(queries []Query) []bool {
	results := make([]bool, len(queries))
	for i, q := range queries {
		results[i] = idx.IsAvailable(q.StaffID, q.ShiftID)
	}
	return results
}

// Pairs 返回可用 (人员, 班次) 对的数量
func (idx *Index) Pairs() int {
	return idx.available
}

// Conflicts 返回构建时发现的重复记录数
func (idx *Index) Conflicts() int {
	return idx.conflicts
}
