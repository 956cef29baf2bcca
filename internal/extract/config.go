package extract

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/util/sets"
)

// confFieldRE matches a @ConfField annotated static field declaration:
//
//	@ConfField(mutable = true, comment = "...")
//	public static int log_roll_size_mb = 1024;
//
// Groups: annotation params, field type, field name, default value.
var confFieldRE = regexp.MustCompile(
	`(?s)@ConfField\s*(?:\(([^)]*)\))?\s*` +
		`(?:@\w+(?:\([^)]*\))?\s*)*` +
		`(?:(?:public|private|protected)\s+)?` +
		`static\s+` +
		`(?:final\s+)?` +
		`([\w\[\]<>,\s]+?)\s+` +
		`(\w+)\s*` +
		`=\s*` +
		`([^;]+);`)

// confFieldNameRE is the relaxed form used for historical scans: any modifier
// order, only the field name captured.
var confFieldNameRE = regexp.MustCompile(
	`(?s)@ConfField\s*(?:\([^)]*\))?\s*` +
		`(?:@\w+(?:\([^)]*\))?\s*)*` +
		`(?:(?:public|protected|private|static|final|transient|volatile)\s+)*` +
		`[\w\[\]<>,\s]+?\s+` +
		`(\w+)\s*` +
		`=\s*` +
		`[^;]+;`)

// ParseConfigParams extracts configuration parameters from Java source.
// The annotation's comment parameter wins over a preceding code comment.
func ParseConfigParams(content, path string) []*item.ConfigParam {
	if !strings.Contains(content, "@ConfField") {
		return nil
	}

	var params []*item.ConfigParam
	for _, m := range confFieldRE.FindAllStringSubmatchIndex(content, -1) {
		annotation := submatch(content, m, 1)
		fieldType := strings.TrimSpace(submatch(content, m, 2))
		name := submatch(content, m, 3)
		defaultValue := strings.TrimSpace(submatch(content, m, 4))

		attrs := parseAnnotationParams(annotation)
		comment := attrs["comment"]
		if comment == "" {
			comment = commentBefore(content, m[0])
		}

		line := strings.Count(content[:m[0]], "\n") + 1
		params = append(params, &item.ConfigParam{
			Name:         name,
			Type:         fieldType,
			DefaultValue: defaultValue,
			Comment:      comment,
			Mutable:      strings.EqualFold(attrs["mutable"], "true"),
			Scope:        "FE",
			Define:       fmt.Sprintf("%s:%d", path, line),
		})
	}
	return params
}

// ScanConfigIdentifiers returns every @ConfField field name in content.
func ScanConfigIdentifiers(content string) sets.Set[string] {
	names := sets.New[string]()
	for _, m := range confFieldNameRE.FindAllStringSubmatch(content, -1) {
		names.Add(m[1])
	}
	return names
}
