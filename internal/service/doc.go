// Package service contains the application use cases for tasks and lists.
// It orchestrates the domain model and the stores defined in internal/store,
// applying transactional boundaries where an operation touches more than
// one row.
//
// Key components:
//
//   - TaskService: creating, listing and editing tasks, including the
//     completion path that generates the next instance of a repeating task.
//   - SeriesGenerator: the successor-creation step of that completion path,
//     run inside the caller's transaction.
//   - ListService: list management; deleting a list removes its tasks.
//
// Errors: validation failures are returned as domain validation errors and
// are checked before anything is written. Missing rows map to ErrTaskNotFound
// and ErrListNotFound. Everything else is wrapped in TaskServiceError or
// ListServiceError. Recurrence evaluation failures are logged and never
// surface to the caller.
package service
