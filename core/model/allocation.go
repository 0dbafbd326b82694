package model

import "time"

// DayAllocation records how many workers each task received on one working day.
type DayAllocation struct {
	Date    time.Time      `json:"date"`
	Workers map[string]int `json:"workers"` // 0 for tasks that were not in progress
}

// Total returns the number of workers assigned across all tasks that day.
func (d DayAllocation) Total() int {
	total := 0
	for _, w := range d.Workers {
		total += w
	}
	return total
}

// Copy returns a deep copy of the entry.
func (d DayAllocation) Copy() DayAllocation {
	cp := DayAllocation{Date: d.Date, Workers: make(map[string]int, len(d.Workers))}
	for k, v := range d.Workers {
		cp.Workers[k] = v
	}
	return cp
}
