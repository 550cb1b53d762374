package expand

import "strings"

// splitField is one argv field produced by step 6, before pathname
// expansion; hadQuote remembers whether any part of it came from a quoted
// chunk, which step 7 uses to decide whether globbing applies at all
// (quoted text is never glob-expanded) and whether an empty field must
// still be preserved (an empty quoted string "" is a real, distinct
// argument; an empty unquoted field produced by splitting is dropped).
type splitField struct {
	text     string
	hadQuote bool
}

const whitespaceIFS = " \t\n"

func isAllWhitespace(ifs string) bool {
	for i := 0; i < len(ifs); i++ {
		if strings.IndexByte(whitespaceIFS, ifs[i]) < 0 {
			return false
		}
	}
	return true
}

// splitFields implements IFS word splitting: unquoted runs split on IFS,
// quoted chunks are never split and glue adjacent unquoted fragments into
// the same field, and hardBreak chunks force a new field regardless of
// IFS (array/"$@" expansion). When every IFS character is whitespace,
// runs of separators collapse into one boundary the way bash's default
// IFS does; a customized IFS containing non-whitespace characters instead
// splits on every occurrence, which can produce empty fields.
func splitFields(chunks []fieldChunk, ifs string) []splitField {
	whitespaceOnly := isAllWhitespace(ifs)

	var fields []splitField
	var cur strings.Builder
	curHadQuote := false
	curStarted := false

	flush := func() {
		if curStarted {
			fields = append(fields, splitField{cur.String(), curHadQuote})
		}
		cur.Reset()
		curHadQuote = false
		curStarted = false
	}

	for _, c := range chunks {
		if c.hardBreak {
			flush()
			continue
		}
		if c.quoted {
			cur.WriteString(c.text)
			curHadQuote = true
			curStarted = true
			continue
		}
		if ifs == "" {
			cur.WriteString(c.text)
			curStarted = true
			continue
		}
		start := 0
		for i := 0; i < len(c.text); i++ {
			if strings.IndexByte(ifs, c.text[i]) < 0 {
				continue
			}
			seg := c.text[start:i]
			if whitespaceOnly {
				if seg != "" {
					cur.WriteString(seg)
					curStarted = true
				}
				if curStarted {
					flush()
				}
			} else {
				cur.WriteString(seg)
				curStarted = true
				flush()
			}
			start = i + 1
		}
		seg := c.text[start:]
		if seg != "" {
			cur.WriteString(seg)
			curStarted = true
		}
	}
	flush()
	return fields
}
