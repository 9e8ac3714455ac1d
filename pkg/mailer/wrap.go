package mailer

import "strings"

// Wrap re-flows every non-empty line of text to at most width columns.
// Empty lines are kept so paragraph breaks survive. Words longer than
// width are placed on a line of their own rather than split.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for par := range strings.SplitSeq(text, "\n") {
		words := strings.Fields(par)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		var line strings.Builder
		for _, w := range words {
			if line.Len() > 0 && line.Len()+1+len(w) > width {
				out = append(out, line.String())
				line.Reset()
			}
			if line.Len() > 0 {
				line.WriteByte(' ')
			}
			line.WriteString(w)
		}
		out = append(out, line.String())
	}
	return strings.Join(out, "\n")
}
