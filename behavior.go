package hackload

import (
	"context"
	"sort"
	"time"
)

// TaskFunc performs one request, ctx carries request timeout
type TaskFunc func(ctx context.Context) DoResult

type WeightedTask struct {
	Name   string
	Weight int
	Fn     TaskFunc
}

// Behavior describes what a user does: tasks with relative weights and a pause between them
type Behavior struct {
	MinWait time.Duration
	MaxWait time.Duration
	Tasks   []WeightedTask
}

// Wait returns uniform duration in [MinWait, MaxWait] with millisecond resolution
func (b Behavior) Wait(r Rand) time.Duration {
	if b.MaxWait <= b.MinWait {
		return b.MinWait
	}
	spanMs := int((b.MaxWait - b.MinWait) / time.Millisecond)
	return b.MinWait + time.Duration(r.Intn(spanMs+1))*time.Millisecond
}

// WithWait copy of behavior with another wait interval
func (b Behavior) WithWait(w WaitRange) Behavior {
	b.MinWait = time.Duration(w.MinMs) * time.Millisecond
	b.MaxWait = time.Duration(w.MaxMs) * time.Millisecond
	return b
}

// weightTable cumulative weights, draw in [0, total) maps to an index
type weightTable struct {
	cumulative []int
	total      int
}

func newWeightTable(weights []int) (weightTable, error) {
	if len(weights) == 0 {
		return weightTable{}, errNoTasks
	}
	t := weightTable{cumulative: make([]int, 0, len(weights))}
	for _, w := range weights {
		if w <= 0 {
			return weightTable{}, errNonPositiveWeight
		}
		t.total += w
		t.cumulative = append(t.cumulative, t.total)
	}
	return t, nil
}

func (t weightTable) index(draw int) int {
	return sort.SearchInts(t.cumulative, draw+1)
}

func (t weightTable) pick(r Rand) int {
	return t.index(r.Intn(t.total))
}

// TaskSelector picks tasks proportionally to their weights
type TaskSelector struct {
	tasks []WeightedTask
	table weightTable
}

func NewTaskSelector(tasks []WeightedTask) (*TaskSelector, error) {
	weights := make([]int, 0, len(tasks))
	for _, t := range tasks {
		weights = append(weights, t.Weight)
	}
	table, err := newWeightTable(weights)
	if err != nil {
		return nil, err
	}
	return &TaskSelector{tasks: tasks, table: table}, nil
}

// PickIndex maps a draw in [0, TotalWeight()) to a task index
func (s *TaskSelector) PickIndex(draw int) int {
	return s.table.index(draw)
}

func (s *TaskSelector) Pick(r Rand) WeightedTask {
	return s.tasks[s.table.pick(r)]
}

func (s *TaskSelector) TotalWeight() int {
	return s.table.total
}
