package theme

// Theme values applied as data-theme on the document root.
const (
	Light = "light"
	Dark  = "dark"
)

// Default is used when nothing has been stored.
const Default = Light

// Normalize maps any stored value onto a known theme.
// POST: returns Light or Dark
func Normalize(stored string) string {
	if stored == Dark {
		return Dark
	}
	return Light
}

// Toggle returns the opposite theme.
// PRE: none
// POST: Toggle(Toggle(x)) == Normalize(x)
func Toggle(current string) string {
	if Normalize(current) == Dark {
		return Light
	}
	return Dark
}
