//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Settings keys read and written by the harvest job. The names are shared with the
// platform plugin's option storage.
const (
	// SettingsKeyLogEmail holds a JSON object with the configured recipient string.
	SettingsKeyLogEmail = "rs_elew_wc_log_email_settings"
	// SettingsFieldLogEmail is the field inside SettingsKeyLogEmail carrying the raw string.
	SettingsFieldLogEmail = "rs_elew_wc_log_email"
	// SettingsKeyAdminEmail holds the site's administrative contact address (JSON string).
	SettingsKeyAdminEmail = "admin_email"
	// SettingsKeySiteName holds the site title (JSON string), used when no site name is configured.
	SettingsKeySiteName = "blogname"
)

// RecipientConfig is the raw, untrimmed comma-separated recipient string as stored.
type RecipientConfig struct {
	Raw string
	// Set is false when the settings key or field is absent.
	Set bool
}

// RecipientTier names the precedence tier that supplied the recipient source string.
type RecipientTier string

const (
	RecipientTierNone       RecipientTier = ""
	RecipientTierConfigured RecipientTier = "configured"
	RecipientTierRecovery   RecipientTier = "recovery_mode"
	RecipientTierAdmin      RecipientTier = "admin"
)

// RecipientList is the ordered, validated recipient list for a single run.
// Duplicates are preserved.
type RecipientList struct {
	Addresses []string
	Source    RecipientTier
	// Rejected holds non-empty entries dropped for failing address validation.
	Rejected []string
}

// Len returns the number of deliverable addresses.
func (l RecipientList) Len() int {
	return len(l.Addresses)
}

// Empty reports whether nothing can be delivered.
func (l RecipientList) Empty() bool {
	return len(l.Addresses) == 0
}
