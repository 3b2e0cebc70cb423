package dataset

// AnnotationKind distinguishes how an annotation band is drawn.
type AnnotationKind string

const (
	// KindPeriod is a shaded background band (economic, industrial, policy).
	KindPeriod AnnotationKind = "period"
	// KindHighlight is a single emphasized band with a centered label.
	KindHighlight AnnotationKind = "highlight"
)

// Marker is a labeled point on the period axis.
type Marker struct {
	Period int    `json:"period"`
	Label  string `json:"label"`
}

// Annotation is a labeled period interval with optional markers. When
// EndInclusive is set the band covers the whole End period, so it is drawn
// up to End+1.
type Annotation struct {
	Label        string         `json:"label"`
	Start        int            `json:"start"`
	End          int            `json:"end"`
	EndInclusive bool           `json:"end_inclusive,omitempty"`
	Markers      []Marker       `json:"markers,omitempty"`
	Kind         AnnotationKind `json:"kind"`
}

// Contains reports whether period p falls inside the annotation.
func (a Annotation) Contains(p int) bool {
	return p >= a.Start && p <= a.End
}

// DrawEnd returns the period at which the band ends on the axis.
func (a Annotation) DrawEnd() int {
	if a.EndInclusive {
		return a.End + 1
	}
	return a.End
}
