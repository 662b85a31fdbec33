package sqlgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownSetting is returned when an override names a column the settings table lacks.
var ErrUnknownSetting = errors.New("unknown setting")

// Singleton is a one-row configuration table that is reset on every run.
type Singleton struct {
	Table    Table
	Defaults []any
}

// GeneralSettings holds the session calendar used by the timetable generator.
var GeneralSettings = Singleton{
	Table: Table{
		Name:    "general_settings",
		Columns: []string{"id", "current_session", "current_semester", "periods_per_day", "exam_days"},
		Key:     []string{"id"},
	},
	Defaults: []any{1, "2024/2025", 1, 3, 10},
}

// OptimizationSettings holds the genetic optimizer parameters.
var OptimizationSettings = Singleton{
	Table: Table{
		Name:    "optimization_settings",
		Columns: []string{"id", "population_size", "generations", "mutation_rate", "crossover_rate"},
		Key:     []string{"id"},
	},
	Defaults: []any{1, 100, 500, 0.05, 0.8},
}

// Row returns the defaults with overrides applied. Override keys are column names.
func (s Singleton) Row(overrides map[string]string) ([]any, error) {
	row := make([]any, len(s.Defaults))
	copy(row, s.Defaults)

	for key, raw := range overrides {
		col := strings.ToLower(strings.TrimSpace(key))
		idx := -1
		for i, c := range s.Table.Columns {
			if c == col {
				idx = i
				break
			}
		}
		if idx < 0 || col == "id" {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownSetting, s.Table.Name, key)
		}
		row[idx] = settingValue(raw)
	}
	return row, nil
}

func settingValue(raw string) any {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if strings.EqualFold(s, "null") {
		return nil
	}
	return s
}
