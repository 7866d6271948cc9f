// Package theme holds the dashboard palette shared by the page and the figures.
package theme

const (
	Primary    = "#6c63ff"
	Accent     = "#ef476f"
	Panel      = "#23233e"
	Background = "#181b2a"
	Cyan       = "#00bcd4"
	Muted      = "#555a7a"
	Text       = "white"
	FontFamily = "Segoe UI, Arial, sans-serif"
)

// Sequence is the discrete color order used for categorical series.
var Sequence = []string{Primary, Accent, Cyan}

// SequenceColor cycles through Sequence.
func SequenceColor(i int) string {
	return Sequence[i%len(Sequence)]
}
