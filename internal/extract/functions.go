package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docweaver/internal/item"
	"git.home.luguber.info/inful/docweaver/internal/util/sets"
)

// functionEntryRE matches one entry of the builtin function registry:
//
//	[10060, 'add', True, False, 'BIGINT', ['BIGINT', 'BIGINT'], 'MathFunctions::add'],
//
// Groups: function name, return type, argument type list.
var functionEntryRE = regexp.MustCompile(
	`\[\s*\d+\s*,\s*['"](\w+)['"]\s*,\s*\w+\s*,\s*\w+\s*,\s*['"]([\w<>]+)['"]\s*,\s*\[([^\]]*)\]`)

// ParseSQLFunctions extracts builtin functions from the registry file. Entries
// sharing a name are overloads: their signatures are merged into one item,
// sorted for stable output.
func ParseSQLFunctions(content string) []*item.SQLFunction {
	type overloads struct {
		returnType string
		signatures sets.Set[string]
	}
	byName := make(map[string]*overloads)

	for _, m := range functionEntryRE.FindAllStringSubmatch(content, -1) {
		name := m[1]
		returnType := m[2]
		args := parseArgTypes(m[3])

		sig := fmt.Sprintf("%s(%s) -> %s", name, strings.Join(args, ", "), returnType)
		group, ok := byName[name]
		if !ok {
			group = &overloads{returnType: returnType, signatures: sets.New[string]()}
			byName[name] = group
		}
		group.signatures.Add(sig)
	}

	functions := make([]*item.SQLFunction, 0, len(byName))
	for name, group := range byName {
		sigs := make([]string, 0, group.signatures.Len())
		for sig := range group.signatures {
			sigs = append(sigs, sig)
		}
		sort.Strings(sigs)
		functions = append(functions, &item.SQLFunction{
			Name:       name,
			Signature:  strings.Join(sigs, "\n"),
			ReturnType: group.returnType,
		})
	}
	sort.Slice(functions, func(i, j int) bool { return functions[i].Name < functions[j].Name })
	return functions
}

func parseArgTypes(list string) []string {
	var args []string
	for _, part := range strings.Split(list, ",") {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part != "" {
			args = append(args, part)
		}
	}
	return args
}

// ScanFunctionIdentifiers returns every function name in the registry file.
func ScanFunctionIdentifiers(content string) sets.Set[string] {
	names := sets.New[string]()
	for _, m := range functionEntryRE.FindAllStringSubmatch(content, -1) {
		names.Add(m[1])
	}
	return names
}
