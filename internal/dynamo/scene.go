package dynamo

// Color is a hex color string such as "#0d9488".
type Color string

type Point struct {
	X, Y float64
}

type Line struct {
	From, To Point
	Color    Color
	Alpha    float64
	Width    float64
}

type Circle struct {
	Center Point
	Radius float64
	Color  Color
	Filled bool
}

type Polyline struct {
	Points []Point
	Color  Color
	Width  float64
}

type Text struct {
	At      Point
	Content string
	Color   Color
}

// Scene is the display list for one frame. Renderers clear their surface
// and replay it in order: lines, polylines, circles, text.
type Scene struct {
	Size      Size
	Lines     []Line
	Polylines []Polyline
	Circles   []Circle
	Texts     []Text
}

func NewScene(size Size) *Scene {
	return &Scene{Size: size}
}

// Clear empties the display list and keeps the backing arrays.
func (s *Scene) Clear() {
	s.Lines = s.Lines[:0]
	s.Polylines = s.Polylines[:0]
	s.Circles = s.Circles[:0]
	s.Texts = s.Texts[:0]
}

func (s *Scene) AddLine(l Line) {
	if l.Alpha == 0 {
		l.Alpha = 1
	}
	s.Lines = append(s.Lines, l)
}

func (s *Scene) AddCircle(c Circle) {
	s.Circles = append(s.Circles, c)
}

func (s *Scene) AddPolyline(p Polyline) {
	s.Polylines = append(s.Polylines, p)
}

func (s *Scene) AddText(t Text) {
	s.Texts = append(s.Texts, t)
}

func (s *Scene) Empty() bool {
	return len(s.Lines) == 0 && len(s.Polylines) == 0 && len(s.Circles) == 0 && len(s.Texts) == 0
}
