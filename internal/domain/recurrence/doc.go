// Package recurrence evaluates RFC 5545 recurrence rules against naive
// wall-clock date-times. Everything here is pure: no I/O and no clock
// reads, so the same inputs always produce the same occurrence.
package recurrence
