package repair

// Language describes how a target file is presented to the patch service
type Language struct {
	Name     string // Human-readable, e.g. "Python"
	FenceTag string // Markdown fence tag, e.g. "python"
}
