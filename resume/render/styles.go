package render

// RunStyle captures the inline run formatting for a resume element. Size is
// in half-points.
type RunStyle struct {
	Bold bool
	Size int
}

const (
	FontName    = "Calibri"
	BodySize    = 20
	SubSize     = 22
	HeadingSize = 24
	NameSize    = 32
)

// StyleMap centralizes the formatting for key resume elements.
var StyleMap = map[string]RunStyle{
	"name": {
		Bold: true,
		Size: NameSize,
	},
	"sectionHeading": {
		Bold: true,
		Size: HeadingSize,
	},
	"subHeading": {
		Bold: true,
		Size: SubSize,
	},
	"body": {
		Size: BodySize,
	},
}

// Layout is the page geometry in twips.
type Layout struct {
	PageWidth    int
	PageHeight   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
}

// DefaultLayout is US Letter with half-inch margins.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:    12240,
		PageHeight:   15840,
		MarginTop:    720,
		MarginRight:  720,
		MarginBottom: 720,
		MarginLeft:   720,
	}
}

// TabPosition is the right edge of the text area, where dates align.
func (l Layout) TabPosition() int {
	return l.PageWidth - l.MarginLeft - l.MarginRight
}
