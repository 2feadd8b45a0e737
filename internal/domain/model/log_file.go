//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// LogFilePrefix and LogFileSuffix frame the platform's fatal-error log file names:
// fatal-errors-<YYYY-MM-DD><anything>.log
const (
	LogFilePrefix = "fatal-errors-"
	LogFileSuffix = ".log"
)

// LogFile references a matched log file on disk. It is discovered fresh each run and
// never modified.
type LogFile struct {
	Path string
	Name string
}
