package domain

// UnusableReason explains why a station export was rejected
type UnusableReason string

const (
	ReasonNone           UnusableReason = ""
	ReasonUnreadable     UnusableReason = "unreadable"
	ReasonEmpty          UnusableReason = "empty"
	ReasonNoDataSentinel UnusableReason = "no_data_available"
	ReasonNoLevelColumn  UnusableReason = "no_level_column"
	ReasonMissingColumns UnusableReason = "missing_columns"
)

// FileVerdict is the outcome of a usability check on one file
type FileVerdict struct {
	Path        string         `json:"path"`
	Usable      bool           `json:"usable"`
	Reason      UnusableReason `json:"reason,omitempty"`
	LevelColumn string         `json:"level_column,omitempty"`
	Missing     []string       `json:"missing,omitempty"`
	Detail      string         `json:"detail,omitempty"`
}

// Usable builds a positive verdict
func Usable(path, levelColumn string) FileVerdict {
	return FileVerdict{Path: path, Usable: true, LevelColumn: levelColumn}
}

// Unusable builds a negative verdict
func Unusable(path string, reason UnusableReason, detail string) FileVerdict {
	return FileVerdict{Path: path, Reason: reason, Detail: detail}
}
