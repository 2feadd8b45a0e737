//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "fmt"

// EmailMessage is one outgoing log email. Body is the raw log content.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// LogEmailSubject builds "[<site>] <platform> Fatal Errors Log for <date>".
func LogEmailSubject(siteName, platform, date string) string {
	return fmt.Sprintf("[%s] %s Fatal Errors Log for %s", siteName, platform, date)
}
