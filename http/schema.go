package http

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"moodfuel/dataset"
)

// 校验错误类型
const (
	ErrTypeMissing     = "missing"
	ErrTypeType        = "type_error"
	ErrTypeValue       = "value_error"
	ErrTypeJSONInvalid = "json_invalid"
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Type string   `json:"type"`
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
}

// ValidationError is returned by ParsePredictRequest and rendered as 422.
type ValidationError struct {
	Detail []FieldError `json:"detail"`
}

func (e *ValidationError) Error() string {
	if len(e.Detail) == 0 {
		return "validation failed"
	}
	first := e.Detail[0]
	return fmt.Sprintf("%s: %s (%d errors)", first.Loc[len(first.Loc)-1], first.Msg, len(e.Detail))
}

func (e *ValidationError) add(kind, field, msg string) {
	e.Detail = append(e.Detail, FieldError{Type: kind, Loc: []string{"body", field}, Msg: msg})
}

// PredictRequest 预测请求
type PredictRequest struct {
	SleepHours    float64 `json:"sleep_hours"`
	StressLevel   int     `json:"stress_level"`
	TimeOfDay     int     `json:"time_of_day"`
	WorkloadLevel int     `json:"workload_level"`
}

func (r PredictRequest) Features() dataset.Features {
	return dataset.Features{
		SleepHours:    r.SleepHours,
		StressLevel:   r.StressLevel,
		TimeOfDay:     r.TimeOfDay,
		WorkloadLevel: r.WorkloadLevel,
	}
}

type fieldSpec struct {
	name     string
	integer  bool
	min, max float64
	set      func(r *PredictRequest, v float64)
}

var predictFields = []fieldSpec{
	{dataset.ColSleepHours, false, 0, 24, func(r *PredictRequest, v float64) { r.SleepHours = v }},
	{dataset.ColStressLevel, true, 1, 10, func(r *PredictRequest, v float64) { r.StressLevel = int(v) }},
	{dataset.ColTimeOfDay, true, 0, 23, func(r *PredictRequest, v float64) { r.TimeOfDay = int(v) }},
	{dataset.ColWorkloadLevel, true, 1, 10, func(r *PredictRequest, v float64) { r.WorkloadLevel = int(v) }},
}

// ParsePredictRequest decodes body and checks every field, collecting all
// problems instead of stopping at the first one. Unknown fields are ignored.
func ParsePredictRequest(body []byte) (PredictRequest, error) {
	var req PredictRequest
	verr := &ValidationError{}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		verr.Detail = append(verr.Detail, FieldError{Type: ErrTypeMissing, Loc: []string{"body"}, Msg: "Field required"})
		return req, verr
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		verr.Detail = append(verr.Detail, FieldError{Type: ErrTypeJSONInvalid, Loc: []string{"body"}, Msg: "JSON object expected"})
		return req, verr
	}

	for _, field := range predictFields {
		value, ok := raw[field.name]
		if !ok {
			verr.add(ErrTypeMissing, field.name, "Field required")
			continue
		}
		number, err := parseNumber(value)
		if err != nil {
			verr.add(ErrTypeType, field.name, err.Error())
			continue
		}
		if field.integer && number != math.Trunc(number) {
			verr.add(ErrTypeType, field.name, "Input should be a valid integer, got a number with a fractional part")
			continue
		}
		if number < field.min || number > field.max {
			verr.add(ErrTypeValue, field.name, fmt.Sprintf("Input should be between %v and %v", field.min, field.max))
			continue
		}
		field.set(&req, number)
	}

	if len(verr.Detail) > 0 {
		return PredictRequest{}, verr
	}
	return req, nil
}

// parseNumber accepts only JSON number literals; strings, booleans and null
// are type errors.
func parseNumber(raw json.RawMessage) (float64, error) {
	value := bytes.TrimSpace(raw)
	if len(value) == 0 || (value[0] != '-' && (value[0] < '0' || value[0] > '9')) {
		return 0, fmt.Errorf("Input should be a valid number")
	}
	number, err := strconv.ParseFloat(string(value), 64)
	if err != nil || math.IsInf(number, 0) || math.IsNaN(number) {
		return 0, fmt.Errorf("Input should be a valid number")
	}
	return number, nil
}
