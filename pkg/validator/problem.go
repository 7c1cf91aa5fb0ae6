// Package validator 提供排班问题校验与排班结果审计功能
package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	v10 "github.com/go-playground/validator/v10"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
)

// ProblemValidator 问题定义校验器
//
// 先做结构校验（字段级规则），再做引用完整性校验（重复ID、
// 悬空引用）。所有问题一次性收集后统一返回。
type ProblemValidator struct {
	validate *v10.Validate
}

// NewProblemValidator 创建问题校验器
func NewProblemValidator() *ProblemValidator {
	validate := v10.New()
	// 错误信息里用 JSON 字段名，跟输入格式保持一致
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ProblemValidator{validate: validate}
}

// Validate 校验问题定义，返回 nil 或 CodeValidationFail 错误
func (p *ProblemValidator) Validate(problem *model.Problem) error {
	verrs := &errors.ValidationErrors{}

	if problem == nil {
		verrs.Add("problem", "问题定义不能为空")
		return verrs.ToAppError()
	}

	staffIDs := p.checkStaff(verrs, problem.Staff)
	shiftIDs := p.checkShifts(verrs, problem.Shifts)
	p.checkParams(verrs, problem.Params)
	p.checkAvailability(verrs, problem.Availability, staffIDs, shiftIDs)
	p.checkPreferences(verrs, problem.Staff, shiftIDs)

	if verrs.HasErrors() {
		return verrs.ToAppError()
	}
	return nil
}

// checkStaff 校验人员字段并返回ID集合
func (p *ProblemValidator) checkStaff(verrs *errors.ValidationErrors, staff []*model.Staff) map[string]bool {
	ids := make(map[string]bool, len(staff))
	for i, st := range staff {
		field := fmt.Sprintf("staff[%d]", i)
		if st == nil {
			verrs.Add(field, "人员不能为空")
			continue
		}
		if err := p.validate.Struct(st); err != nil {
			p.collect(verrs, field, err)
		}
		if st.ID == "" {
			continue
		}
		if ids[st.ID] {
			verrs.Add(field+".id", fmt.Sprintf("人员ID重复: %s", st.ID))
		}
		ids[st.ID] = true
	}
	return ids
}

// checkShifts 校验班次字段并返回ID集合
func (p *ProblemValidator) checkShifts(verrs *errors.ValidationErrors, shifts []*model.Shift) map[string]bool {
	ids := make(map[string]bool, len(shifts))
	for i, sh := range shifts {
		field := fmt.Sprintf("shifts[%d]", i)
		if sh == nil {
			verrs.Add(field, "班次不能为空")
			continue
		}
		if err := p.validate.Struct(sh); err != nil {
			p.collect(verrs, field, err)
		}
		if sh.Start != "" && !validClock(sh.Start) {
			verrs.Add(field+".start", fmt.Sprintf("时间格式无效: %s，应为 HH:MM", sh.Start))
		}
		if sh.End != "" && !validClock(sh.End) {
			verrs.Add(field+".end", fmt.Sprintf("时间格式无效: %s，应为 HH:MM", sh.End))
		}
		if sh.ID == "" {
			continue
		}
		if ids[sh.ID] {
			verrs.Add(field+".id", fmt.Sprintf("班次ID重复: %s", sh.ID))
		}
		ids[sh.ID] = true
	}
	return ids
}

// checkParams 校验问题级参数
func (p *ProblemValidator) checkParams(verrs *errors.ValidationErrors, params model.Params) {
	if err := p.validate.Struct(params); err != nil {
		p.collect(verrs, "params", err)
	}
}

// checkAvailability 校验可用性记录的引用完整性
func (p *ProblemValidator) checkAvailability(verrs *errors.ValidationErrors, records []model.AvailabilityRecord, staffIDs, shiftIDs map[string]bool) {
	for i, rec := range records {
		field := fmt.Sprintf("availability[%d]", i)
		if rec.StaffID == "" {
			verrs.Add(field+".staff_id", "人员ID不能为空")
		} else if !staffIDs[rec.StaffID] {
			verrs.Add(field+".staff_id", fmt.Sprintf("引用了未知人员: %s", rec.StaffID))
		}
		if rec.ShiftID == "" {
			verrs.Add(field+".shift_id", "班次ID不能为空")
		} else if !shiftIDs[rec.ShiftID] {
			verrs.Add(field+".shift_id", fmt.Sprintf("引用了未知班次: %s", rec.ShiftID))
		}
	}
}

// checkPreferences 校验偏好分引用的班次是否存在
func (p *ProblemValidator) checkPreferences(verrs *errors.ValidationErrors, staff []*model.Staff, shiftIDs map[string]bool) {
	for i, st := range staff {
		if st == nil || len(st.Preferences) == 0 {
			continue
		}
		keys := make([]string, 0, len(st.Preferences))
		for shiftID := range st.Preferences {
			keys = append(keys, shiftID)
		}
		sort.Strings(keys)
		for _, shiftID := range keys {
			if !shiftIDs[shiftID] {
				verrs.Add(fmt.Sprintf("staff[%d].preferences", i),
					fmt.Sprintf("偏好引用了未知班次: %s", shiftID))
			}
		}
	}
}

// collect 把结构校验错误展开为字段级错误
func (p *ProblemValidator) collect(verrs *errors.ValidationErrors, prefix string, err error) {
	var fieldErrs v10.ValidationErrors
	if stderrors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verrs.Add(fmt.Sprintf("%s.%s", prefix, fe.Field()),
				fmt.Sprintf("未通过 %s 规则校验", fe.Tag()))
		}
		return
	}
	verrs.Add(prefix, err.Error())
}

// validClock 检查 HH:MM 时间格式
func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
