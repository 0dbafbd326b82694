// Package planner turns raw task table rows into validated tasks for the
// scheduling engine.
//
// Malformed rows are not errors: they come back as Rejections and are left
// out of the schedulable set. Malformed optional values such as a manual
// start or a holiday come back as Warnings and are treated as absent.
// Dependencies are not checked for cycles or dangling names; the engine
// reports such tasks as unscheduled.
package planner
