// Package ratings reconciles credit ratings from several agencies and scale
// dialects onto one ordered 26-bucket scale.
package ratings

// Bucket is a position on the canonical scale: 1 is AAA-equivalent and 26
// is D-equivalent. Lower buckets are better credit quality.
type Bucket int

const (
	// BucketBest is the AAA-equivalent bucket.
	BucketBest Bucket = 1
	// BucketWorst is the D-equivalent bucket.
	BucketWorst Bucket = 26
)

// NotRated is the label shown when no agency rating could be matched.
const NotRated = "NR"

var labels = [...]string{
	"AAA",
	"AA+", "AA", "AA-",
	"A+", "A", "A-",
	"BBB+", "BBB", "BBB-",
	"BB+", "BB", "BB-",
	"B+", "B", "B-",
	"CCC+", "CCC", "CCC-",
	"CC+", "CC", "CC-",
	"C+", "C", "C-",
	"D",
}

// Valid reports whether b lies on the canonical scale.
func (b Bucket) Valid() bool {
	return b >= BucketBest && b <= BucketWorst
}

// Label returns the canonical label of the bucket, or NotRated when out of range.
func (b Bucket) Label() string {
	if !b.Valid() {
		return NotRated
	}
	return labels[b-1]
}

// Labels returns the canonical labels in scale order followed by NotRated.
func Labels() []string {
	out := make([]string, 0, len(labels)+1)
	out = append(out, labels[:]...)
	return append(out, NotRated)
}

// LabelOrder returns the sort position of a canonical label. Unknown labels
// sort after NotRated.
func LabelOrder(label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	if label == NotRated {
		return len(labels)
	}
	return len(labels) + 1
}
