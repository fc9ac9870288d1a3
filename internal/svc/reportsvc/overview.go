package reportsvc

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mkrupp/taskmgr/internal/domain"
)

// Percentage is a ratio in percent that may be undefined because its
// denominator was zero.
type Percentage struct {
	value   float64
	defined bool
}

// Percent returns part/total*100.
// Returns domain.ErrDivisionUndefined if total is zero.
func Percent(part, total int) (Percentage, error) {
	if total == 0 {
		return Percentage{}, fmt.Errorf("%w: %d of 0", domain.ErrDivisionUndefined, part)
	}

	return Percentage{value: float64(part) / float64(total) * 100, defined: true}, nil
}

// percentOf is Percent with an undefined result in place of the error.
func percentOf(part, total int) Percentage {
	p, err := Percent(part, total)
	if errors.Is(err, domain.ErrDivisionUndefined) {
		return Percentage{}
	}

	return p
}

// Value returns the percentage and whether it is defined.
func (p Percentage) Value() (float64, bool) {
	return p.value, p.defined
}

// String formats the percentage with two decimals, or "n/a".
func (p Percentage) String() string {
	if !p.defined {
		return "n/a"
	}

	return fmt.Sprintf("%.2f%%", p.value)
}

// MarshalYAML implements yaml.Marshaler. Undefined percentages become null.
func (p Percentage) MarshalYAML() (any, error) {
	if !p.defined {
		return nil, nil
	}

	return p.String(), nil
}

// TaskOverview aggregates the task store as of a date.
type TaskOverview struct {
	AsOf              domain.Date `yaml:"as_of"`
	Total             int         `yaml:"total"`
	Completed         int         `yaml:"completed"`
	Incomplete        int         `yaml:"incomplete"`
	Overdue           int         `yaml:"overdue"`
	PercentIncomplete Percentage  `yaml:"percent_incomplete"`
	PercentOverdue    Percentage  `yaml:"percent_overdue"`
}

// Empty reports whether there were no tasks to aggregate.
func (o TaskOverview) Empty() bool {
	return o.Total == 0
}

// UserStats aggregates the tasks of one assignee. Percentages other than
// PercentOfTotal use the user's own task count as denominator.
type UserStats struct {
	Username          string     `yaml:"username"`
	Registered        bool       `yaml:"registered"`
	Tasks             int        `yaml:"tasks"`
	Completed         int        `yaml:"completed"`
	Incomplete        int        `yaml:"incomplete"`
	Overdue           int        `yaml:"overdue"`
	PercentOfTotal    Percentage `yaml:"percent_of_total"`
	PercentCompleted  Percentage `yaml:"percent_completed"`
	PercentIncomplete Percentage `yaml:"percent_incomplete"`
	PercentOverdue    Percentage `yaml:"percent_overdue"`
}

// UserOverview aggregates the task store per user as of a date.
type UserOverview struct {
	AsOf       domain.Date `yaml:"as_of"`
	TotalUsers int         `yaml:"total_users"`
	TotalTasks int         `yaml:"total_tasks"`
	Users      []UserStats `yaml:"users"`
}

// ComputeTaskOverview counts total, completed, incomplete and overdue tasks.
func ComputeTaskOverview(tasks []domain.Task, asOf domain.Date) TaskOverview {
	overview := TaskOverview{AsOf: asOf, Total: len(tasks)}

	for _, t := range tasks {
		if t.Completed {
			overview.Completed++
		} else {
			overview.Incomplete++
		}

		if t.IsOverdue(asOf) {
			overview.Overdue++
		}
	}

	overview.PercentIncomplete = percentOf(overview.Incomplete, overview.Total)
	overview.PercentOverdue = percentOf(overview.Overdue, overview.Total)

	return overview
}

// ComputeUserOverview aggregates tasks per user. Registered users come first
// in registration order; assignees missing from the credential store follow
// in order of first appearance. Assignees match users ignoring letter case.
func ComputeUserOverview(tasks []domain.Task, users []string, asOf domain.Date) UserOverview {
	overview := UserOverview{
		AsOf:       asOf,
		TotalUsers: len(users),
		TotalTasks: len(tasks),
	}

	stats := make([]UserStats, 0, len(users))

	for _, u := range users {
		stats = append(stats, UserStats{Username: u, Registered: true})
	}

	for _, t := range tasks {
		i := slices.IndexFunc(stats, func(s UserStats) bool { return strings.EqualFold(s.Username, t.Username) })
		if i < 0 {
			i = len(stats)
			stats = append(stats, UserStats{Username: t.Username})
		}

		s := &stats[i]
		s.Tasks++

		if t.Completed {
			s.Completed++
		} else {
			s.Incomplete++
		}

		if t.IsOverdue(asOf) {
			s.Overdue++
		}
	}

	for i := range stats {
		s := &stats[i]
		s.PercentOfTotal = percentOf(s.Tasks, overview.TotalTasks)
		s.PercentCompleted = percentOf(s.Completed, s.Tasks)
		s.PercentIncomplete = percentOf(s.Incomplete, s.Tasks)
		s.PercentOverdue = percentOf(s.Overdue, s.Tasks)
	}

	overview.Users = stats

	return overview
}
