package helpkb

// Converter converts HTML to Markdown for display.
type Converter interface {
	Convert(html string) (string, error)
}
