package extract

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/util/sets"
)

// varAttrFieldRE matches a @VarAttr (or @VariableMgr.VarAttr) annotated field
// declaration. Groups: annotation params, field type, field name, default.
var varAttrFieldRE = regexp.MustCompile(
	`(?s)@(?:VariableMgr\.)?VarAttr\s*\(([^)]+)\)\s*` +
		`(?:@\w+(?:\([^)]*\))?\s*)*` +
		`(?:(?:public|private|protected|static|final|transient|volatile)\s+)*` +
		`([\w\[\]<>,]+)\s+` +
		`(\w+)\s*` +
		`=\s*` +
		`([^;]+);`)

// varAttrRE matches only the annotation, for identifier scans.
var varAttrRE = regexp.MustCompile(`(?s)@(?:VariableMgr\.)?VarAttr\s*\(([^)]+)\)`)

// stringConstantRE matches Java string constants like
// `public static final String QUERY_TIMEOUT = "query_timeout";`.
var stringConstantRE = regexp.MustCompile(
	`(?m)(?:(?:public|protected|private|static|final|transient|volatile)\s+)*String\s+(\w+)\s*=\s*"([^"]+)"`)

// stringConstants maps Java constant names to their literal values. The
// annotation's name/show parameters usually reference these constants rather
// than repeat the literal.
func stringConstants(content string) map[string]string {
	out := make(map[string]string)
	for _, m := range stringConstantRE.FindAllStringSubmatch(content, -1) {
		out[m[1]] = m[2]
	}
	return out
}

// resolveAttr returns the value of one annotation parameter, resolving a bare
// token through the constant map.
func resolveAttr(attrs, constants map[string]string, key string) string {
	value, ok := attrs[key]
	if !ok {
		return ""
	}
	if resolved, ok := constants[value]; ok {
		return resolved
	}
	// A quoted literal was already unquoted by the annotation parser; an
	// unresolvable bare token is not a usable identifier.
	if strings.Contains(value, ".") {
		return ""
	}
	return value
}

// ParseSessionVariables extracts session/global variables from Java source.
// The display identifier prefers the annotation's show parameter, falling
// back to name.
func ParseSessionVariables(content, scope string) []*item.SessionVariable {
	if !strings.Contains(content, "@VarAttr") && !strings.Contains(content, "@VariableMgr.VarAttr") {
		return nil
	}
	constants := stringConstants(content)

	var vars []*item.SessionVariable
	for _, m := range varAttrFieldRE.FindAllStringSubmatch(content, -1) {
		attrs := parseAnnotationParams(m[1])
		name := resolveAttr(attrs, constants, "name")
		if name == "" {
			continue
		}
		vars = append(vars, &item.SessionVariable{
			Name:         name,
			Show:         resolveAttr(attrs, constants, "show"),
			Type:         strings.TrimSpace(m[2]),
			DefaultValue: strings.TrimSpace(m[4]),
			Invisible:    strings.Contains(attrs["flag"], "INVISIBLE"),
			Scope:        scope,
		})
	}
	return vars
}

// ScanVariableIdentifiers returns the display identifier of every @VarAttr
// annotation in content: the show parameter when present, otherwise name,
// with constant references resolved.
func ScanVariableIdentifiers(content string) sets.Set[string] {
	constants := stringConstants(content)
	ids := sets.New[string]()
	for _, m := range varAttrRE.FindAllStringSubmatch(content, -1) {
		attrs := parseAnnotationParams(m[1])
		id := resolveAttr(attrs, constants, "show")
		if id == "" {
			id = resolveAttr(attrs, constants, "name")
		}
		if id != "" {
			ids.Add(id)
		}
	}
	return ids
}
