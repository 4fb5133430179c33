package salary

import "strconv"

// Format renders an optional salary range for display. A nil bound is absent;
// zero is a real value and is printed.
func Format(from, to *int) string {
	switch {
	case from != nil && to != nil:
		return "from " + strconv.Itoa(*from) + " to " + strconv.Itoa(*to)
	case from != nil:
		return "from " + strconv.Itoa(*from)
	case to != nil:
		return "to " + strconv.Itoa(*to)
	default:
		return "not specified"
	}
}
