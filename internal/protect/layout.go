package protect

// Layout bounds the page width handed to the rendering engine
type Layout struct {
	Padding  int
	MaxWidth int
}

// DefaultLayout is used by the web viewer, in CSS pixels
var DefaultLayout = Layout{Padding: 32, MaxWidth: 800}

// PageWidth is min(viewport-padding, max), never negative
func (l Layout) PageWidth(viewport int) int {
	w := min(viewport-l.Padding, l.MaxWidth)
	if w < 0 {
		return 0
	}
	return w
}
