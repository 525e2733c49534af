// Package macd is the core of the macd application: it launches a list of
// commands as child processes, periodically reports their resource usage, and
// tears all of them down on an interrupt or when a time limit runs out.
//
// # Mechanism of Operation
//
// macd runs in three phases. It first reads the process list and launches
// every line in order, then reports on the children every interval, and
// finally either exits once every child has exited or kills the children that
// are left when it is interrupted or its time limit runs out.
//
// # Process Table
//
// Every line of the process list takes one slot in the process table, and the
// slot's index is the line number (starting from 0, not counting a timelimit
// line). A line that fails to launch still takes its slot, so indices printed
// in reports always match the input file.
//
// # Supervision
//
// A single goroutine owns the process table. Every interval, it polls each
// child with a non-blocking wait, samples the live ones from procfs and writes
// a report. Between reports, it sleeps in short steps so that an interrupt or
// an expired time limit is noticed quickly.
//
// The only state shared with another goroutine is the stop flag in State,
// which is set once when the interrupt arrives and never cleared.
//
// # Journal
//
// Nothing in this package prints. Everything that happens is written as an
// Event into a Journaler, and package journal decides how events are rendered.
package macd
