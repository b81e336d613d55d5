package utils

// NewNullString maps an empty string to nil so optional text columns
// end up as NULL instead of empty strings.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
