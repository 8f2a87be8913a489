// Package logger records the shell's events and diagnostics.
//
// Events are operator visible facts (a command ran, a job started, a login
// failed) written as newline delimited JSON so they can be summarized later.
// Diagnostics go through zap.
package logger
