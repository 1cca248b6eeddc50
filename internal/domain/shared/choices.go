package shared

// Choices is implemented by string-backed enumerations (statuses, types).
// The admin registry treats any field whose type implements it as a
// filterable choice field rather than free text.
type Choices interface {
	Choices() []string
}

// ContainsChoice reports whether v is one of the allowed values
func ContainsChoice(c Choices, v string) bool {
	for _, s := range c.Choices() {
		if s == v {
			return true
		}
	}
	return false
}
