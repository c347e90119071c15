// Package reminder runs the background loop that turns due task reminders
// into desktop notifications.
//
// Every poll interval the Poller reads undone tasks that carry both a
// reminder date and time, fires the ones that became due within the grace
// window, and remembers which occurrence it already delivered per task so a
// reminder fires once. Editing a reminder changes its occurrence key and
// re-arms it; a failed delivery is retried on the next cycle while the
// reminder is still inside the window.
package reminder
