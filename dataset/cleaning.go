package dataset

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// CleaningRule 清洗规则
type CleaningRule interface {
	Check(obs Observation) error
	Name() string
}

// QualityIssue 质量问题
type QualityIssue struct {
	Rule    string `json:"rule"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// CleaningStats 清洗统计
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

// Cleaner drops observations that break any of its rules before training.
type Cleaner struct {
	rules []CleaningRule

	stats     CleaningStats
	statsLock sync.RWMutex
}

// NewCleaner 创建带默认规则的清洗器
func NewCleaner() *Cleaner {
	cleaner := &Cleaner{
		stats: CleaningStats{Issues: make(map[string]int64)},
	}
	cleaner.AddRule(FiniteValuesRule{})
	cleaner.AddRule(NewRangeRule(ColSleepHours, 0, 24, func(o Observation) float64 { return o.SleepHours }))
	cleaner.AddRule(NewRangeRule(ColStressLevel, 1, 10, func(o Observation) float64 { return float64(o.StressLevel) }))
	cleaner.AddRule(NewRangeRule(ColTimeOfDay, 0, 23, func(o Observation) float64 { return float64(o.TimeOfDay) }))
	cleaner.AddRule(NewRangeRule(ColWorkloadLevel, 1, 10, func(o Observation) float64 { return float64(o.WorkloadLevel) }))
	cleaner.AddRule(NewRangeRule(ColCoffeeStrength, minStrength, maxStrength, func(o Observation) float64 { return o.CoffeeStrength }))
	return cleaner
}

func (c *Cleaner) AddRule(rule CleaningRule) {
	c.rules = append(c.rules, rule)
}

// Clean returns the observations that pass every rule, plus one issue per
// failed rule. Row numbers are zero-based positions in the input.
func (c *Cleaner) Clean(observations []Observation) ([]Observation, []QualityIssue) {
	c.statsLock.Lock()
	defer c.statsLock.Unlock()

	cleaned := make([]Observation, 0, len(observations))
	var issues []QualityIssue
	for row, obs := range observations {
		c.stats.TotalProcessed++

		var rowIssues []QualityIssue
		for _, rule := range c.rules {
			if err := rule.Check(obs); err != nil {
				rowIssues = append(rowIssues, QualityIssue{Rule: rule.Name(), Row: row, Message: err.Error()})
				c.stats.Issues[rule.Name()]++
			}
		}

		if len(rowIssues) > 0 {
			c.stats.Rejected++
			issues = append(issues, rowIssues...)
			continue
		}
		c.stats.Passed++
		cleaned = append(cleaned, obs)
	}

	c.stats.LastClean = time.Now()
	return cleaned, issues
}

// Stats 获取统计信息
func (c *Cleaner) Stats() CleaningStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()

	stats := c.stats
	stats.Issues = make(map[string]int64, len(c.stats.Issues))
	for k, v := range c.stats.Issues {
		stats.Issues[k] = v
	}
	return stats
}

// ============ 清洗规则实现 ============

// FiniteValuesRule rejects NaN and infinite floats.
type FiniteValuesRule struct{}

func (FiniteValuesRule) Name() string { return "finite_values" }

func (FiniteValuesRule) Check(obs Observation) error {
	for name, value := range map[string]float64{
		ColSleepHours:     obs.SleepHours,
		ColCoffeeStrength: obs.CoffeeStrength,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%s is not finite", name)
		}
	}
	return nil
}

// RangeRule 范围验证规则
type RangeRule struct {
	Column string
	Min    float64
	Max    float64
	value  func(Observation) float64
}

func NewRangeRule(column string, min, max float64, value func(Observation) float64) *RangeRule {
	return &RangeRule{Column: column, Min: min, Max: max, value: value}
}

func (r *RangeRule) Name() string {
	return r.Column + "_range"
}

func (r *RangeRule) Check(obs Observation) error {
	v := r.value(obs)
	if v < r.Min || v > r.Max {
		return fmt.Errorf("%s=%v outside [%v, %v]", r.Column, v, r.Min, r.Max)
	}
	return nil
}
