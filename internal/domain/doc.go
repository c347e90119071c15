// Package domain contains the core business entities, value objects, and
// domain logic of the application: tasks, lists, reminders and the state a
// repeating task moves through when it is completed. It is independent of
// any specific infrastructure or delivery mechanism.
package domain
