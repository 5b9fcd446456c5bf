package checks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/contextlint/contextlint/internal/types"
)

// CheckSchemaOrg extracts every Schema.org JSON-LD block from a page.
//
// Each <script type="application/ld+json"> body is JSON-decoded; arrays
// contribute one candidate per element, and an object with an @graph adds
// the object itself plus each graph member. Malformed JSON and blank
// scripts are skipped silently — broken markup is a finding, not a failure.
func CheckSchemaOrg(html string) types.SchemaReport {
	if strings.TrimSpace(html) == "" {
		return types.SchemaReport{Detail: "No HTML to analyze"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.SchemaReport{Detail: "No HTML to analyze"}
	}

	var schemas []types.SchemaOrgResult

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return
		}

		for _, candidate := range collectCandidates(decoded) {
			schemas = append(schemas, describeBlock(candidate))
		}
	})

	detail := fmt.Sprintf("%d JSON-LD blocks", len(schemas))
	if len(schemas) > 0 {
		names := make([]string, 0, 3)
		for _, s := range schemas {
			names = append(names, s.SchemaType)
			if len(names) == 3 {
				break
			}
		}
		detail += " (" + strings.Join(names, ", ") + ")"
	}

	return types.SchemaReport{
		BlocksFound: len(schemas),
		Schemas:     schemas,
		Detail:      detail,
	}
}

// collectCandidates flattens a decoded JSON-LD value into the objects worth
// describing: array elements, the top-level object, and @graph members.
func collectCandidates(decoded any) []map[string]any {
	var out []map[string]any

	switch v := decoded.(type) {
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, expandGraph(obj)...)
			}
		}
	case map[string]any:
		out = append(out, expandGraph(v)...)
	}

	return out
}

// expandGraph returns the object itself followed by any @graph members.
func expandGraph(obj map[string]any) []map[string]any {
	out := []map[string]any{obj}
	graph, ok := obj["@graph"].([]any)
	if !ok {
		return out
	}
	for _, member := range graph {
		if m, ok := member.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// describeBlock reads @type and the top-level property names of one
// candidate object. A list @type joins with commas; a missing or
// non-string @type becomes "Unknown".
func describeBlock(obj map[string]any) types.SchemaOrgResult {
	schemaType := "Unknown"
	switch t := obj["@type"].(type) {
	case string:
		schemaType = t
	case []any:
		var parts []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			schemaType = strings.Join(parts, ",")
		}
	}

	props := make([]string, 0, len(obj))
	for key := range obj {
		if key == "@context" {
			continue
		}
		props = append(props, key)
	}
	sort.Strings(props)

	return types.SchemaOrgResult{SchemaType: schemaType, Properties: props}
}
