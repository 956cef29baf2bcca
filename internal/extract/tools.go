package extract

import (
	"regexp"
	"strings"
)

// annotationParamRE matches one key = value pair inside annotation
// parentheses. The value is a quoted string or a bare token.
var annotationParamRE = regexp.MustCompile(`(\w+)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^,)]+))`)

// parseAnnotationParams turns `mutable = true, comment = "text"` into a map.
// Quotes are stripped; bare values are trimmed.
func parseAnnotationParams(params string) map[string]string {
	out := make(map[string]string)
	for _, m := range annotationParamRE.FindAllStringSubmatch(params, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if value == "" {
			value = strings.TrimSpace(m[4])
		}
		out[m[1]] = value
	}
	return out
}

var (
	javadocRE     = regexp.MustCompile(`(?s)/\*\*\s*(.*?)\s*\*/`)
	blockRE       = regexp.MustCompile(`(?s)/\*\s*(.*?)\s*\*/`)
	lineCommentRE = regexp.MustCompile(`(?m)//\s*(.*)$`)
)

// commentBefore extracts the JavaDoc, block, or line comment immediately
// preceding pos. A comment counts as adjacent when at most declaration-sized
// text separates it from pos.
func commentBefore(content string, pos int) string {
	before := content[:pos]

	if text, ok := lastAdjacent(javadocRE, before); ok {
		return cleanJavadoc(text)
	}
	if text, ok := lastAdjacent(blockRE, before); ok {
		return strings.TrimSpace(text)
	}
	if locs := lineCommentRE.FindAllStringSubmatchIndex(before, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		if adjacent(before[last[1]:]) {
			return strings.TrimSpace(before[last[2]:last[3]])
		}
	}
	return ""
}

func lastAdjacent(re *regexp.Regexp, before string) (string, bool) {
	locs := re.FindAllStringSubmatchIndex(before, -1)
	if len(locs) == 0 {
		return "", false
	}
	last := locs[len(locs)-1]
	if !adjacent(before[last[1]:]) {
		return "", false
	}
	return before[last[2]:last[3]], true
}

func adjacent(gap string) bool {
	return len(strings.TrimSpace(gap)) < 100
}

// cleanJavadoc strips the leading asterisks and joins the lines.
func cleanJavadoc(text string) string {
	var parts []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "* "))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// submatch returns capture group i of a submatch-index match, or "" when the
// group did not participate.
func submatch(content string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return content[m[2*i]:m[2*i+1]]
}
