package protect

import "time"

// Watermark grid dimensions. They do not depend on the viewport or on the
// label length.
const (
	WatermarkRows  = 20
	WatermarkCols  = 20
	WatermarkAngle = -45
)

// TimestampLayout formats the render time in the watermark label
const TimestampLayout = "2006-01-02 15:04:05 MST"

// Label surroundings of the timestamp
const (
	LabelPrefix = "CONFIDENTIAL • "
	LabelSuffix = " • VIEW ONLY"
)

// Watermark is a tiled overlay. Every tile shows Label rotated by Angle
// degrees.
type Watermark struct {
	Rows  int
	Cols  int
	Angle int
	Label string
}

// NewWatermark builds the overlay for a render at now
func NewWatermark(now time.Time) Watermark {
	return Watermark{
		Rows:  WatermarkRows,
		Cols:  WatermarkCols,
		Angle: WatermarkAngle,
		Label: Label(now),
	}
}

// Label is the confidentiality marker stamped with now
func Label(now time.Time) string {
	return LabelPrefix + now.Format(TimestampLayout) + LabelSuffix
}

// Tiles returns the number of tiles in the grid
func (w Watermark) Tiles() int {
	return w.Rows * w.Cols
}

// Grid returns the tiles row by row, for template rendering
func (w Watermark) Grid() [][]string {
	rows := make([][]string, w.Rows)
	for r := range rows {
		row := make([]string, w.Cols)
		for c := range row {
			row[c] = w.Label
		}
		rows[r] = row
	}
	return rows
}
