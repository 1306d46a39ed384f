package agent

import (
	"math/rand"
	"time"
)

// TaskSelector picks tasks with probability proportional to their weight.
// Not safe for concurrent use; the loop owns it.
type TaskSelector struct {
	tasks []Task
	cum   []int
	total int
	rng   *rand.Rand
}

// NewTaskSelector builds a weighted selector over tasks. A seed of 0 derives
// one from the clock; equal non-zero seeds yield equal selection sequences.
// Returns *EmptyTaskSetError when tasks is empty.
func NewTaskSelector(tasks []Task, seed int64) (*TaskSelector, error) {
	if len(tasks) == 0 {
		return nil, &EmptyTaskSetError{}
	}

	cum := make([]int, len(tasks))
	total := 0
	for i, task := range tasks {
		w := task.Weight
		if w < 1 {
			w = 1
		}
		total += w
		cum[i] = total
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &TaskSelector{
		tasks: tasks,
		cum:   cum,
		total: total,
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

// Next returns the next selected task.
func (s *TaskSelector) Next() Task {
	n := s.rng.Intn(s.total)
	for i, c := range s.cum {
		if n < c {
			return s.tasks[i]
		}
	}
	return s.tasks[len(s.tasks)-1]
}
