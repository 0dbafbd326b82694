// Package scheduler runs the day-stepping simulation that assigns a fixed
// pool of interchangeable workers to interdependent tasks.
//
// Each working day the engine completes finished tasks, admits tasks whose
// dependencies are done and whose manual start has arrived, hands out
// workers greedily in priority order and applies one day of work. Tasks
// that never become admissible before the day ceiling are reported as
// unscheduled; that is an expected outcome, not an error.
package scheduler
