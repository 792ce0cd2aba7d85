package app

// Constants
const (
	FilePermissions = 0644
	TmpPattern      = ".*.tmp"

	// ICS constants
	ICSProductID = "-//Klabast//Ophaaldagen//NL"
	ICSTimezone  = "Europe/Amsterdam"
	ICSUIDDomain = "ophaaldagen.klabast.nl"

	// Report formats
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatICS  = "ics"
	FormatYAML = "yaml"
)
