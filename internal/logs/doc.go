// Package logs provides file tailing with offset tracking for the CLI.
//
// It reads log files with bounded memory, supports "last N lines" via a
// negative offset, and polls for new lines in follow mode. Callers supply a
// context so polling stops cleanly when the CLI exits.
package logs
