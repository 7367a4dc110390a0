package strategy

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"

	dErrors "fellinglicence/pkg/domain-errors"
)

// Whole-segment tokens substituted at render time.
const (
	TokenSpecies      = "{species}"
	TokenDensity      = "{density}"
	TokenCompartments = "{compartments}"
	TokenRegeneration = "{regeneration}"
)

// Template keys, one per strategy.
const (
	KeyPlanting            = "planting"
	KeyNaturalRegeneration = "natural_regeneration"
	KeyCoppiceRegrowth     = "coppice_regrowth"
)

var (
	recognisedTokens = map[string]string{
		TokenSpecies:      "species",
		TokenDensity:      "density",
		TokenCompartments: "compartments",
		TokenRegeneration: "regeneration",
	}
	namedPlaceholder      = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	positionalPlaceholder = regexp.MustCompile(`\{(\d+)\}`)
)

// TemplateParameter declares a positional {n} placeholder used in a segment.
type TemplateParameter struct {
	Index        int    `json:"index"`
	DefaultValue string `json:"default_value"`
	Description  string `json:"description"`
}

// Template is the ordered text of a condition. Segments equal to a recognised
// token are replaced with rendered values; anything else is copied verbatim.
type Template struct {
	Name       string              `json:"name"`
	Segments   []string            `json:"segments"`
	Parameters []TemplateParameter `json:"parameters"`
}

// Templates maps a strategy key to its template.
type Templates map[string]Template

// Validate reports malformed configuration: no segments, a named token the
// renderer does not know, or a positional placeholder with no declared parameter.
func (t Template) Validate() error {
	if len(t.Segments) == 0 {
		return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("template %q has no segments", t.Name))
	}
	declared := make(map[int]struct{}, len(t.Parameters))
	for _, p := range t.Parameters {
		declared[p.Index] = struct{}{}
	}
	for i, seg := range t.Segments {
		if _, ok := recognisedTokens[seg]; ok {
			continue
		}
		if m := namedPlaceholder.FindStringSubmatch(seg); m != nil {
			return dErrors.New(dErrors.CodeInternal,
				fmt.Sprintf("template %q segment %d has unrecognised placeholder %s", t.Name, i, m[0]))
		}
		for _, m := range positionalPlaceholder.FindAllStringSubmatch(seg, -1) {
			n, _ := strconv.Atoi(m[1])
			if _, ok := declared[n]; !ok {
				return dErrors.New(dErrors.CodeInternal,
					fmt.Sprintf("template %q segment %d uses undeclared parameter %s", t.Name, i, m[0]))
			}
		}
	}
	return nil
}

// DefaultTemplates returns the built-in condition wording.
func DefaultTemplates() Templates {
	return Templates{
		KeyPlanting: {
			Name: "Restock by planting",
			Segments: []string{
				TokenSpecies,
				TokenDensity,
				TokenCompartments,
				TokenRegeneration,
				"Restocking must be completed within {0} years of the felling and the trees established to the satisfaction of the Forestry Commission.",
				"The restocked area must be maintained, including weeding, protection from damage and replacement of failed trees, for {1} years from the date of restocking.",
			},
			Parameters: []TemplateParameter{
				{Index: 0, DefaultValue: "2", Description: "Years allowed to complete restocking"},
				{Index: 1, DefaultValue: "10", Description: "Years the restocked area must be maintained"},
			},
		},
		KeyNaturalRegeneration: {
			Name: "Restock by natural regeneration",
			Segments: []string{
				TokenSpecies,
				TokenDensity,
				TokenCompartments,
				TokenRegeneration,
				"Natural regeneration must achieve the stocking density above within {0} years of the felling; where it does not, the area must be restocked by planting.",
				"The regenerated area must be protected from browsing damage and maintained for 10 years from the date the stocking density is achieved.",
			},
			Parameters: []TemplateParameter{
				{Index: 0, DefaultValue: "5", Description: "Years allowed for natural regeneration to establish"},
			},
		},
		KeyCoppiceRegrowth: {
			Name: "Restock with coppice regrowth",
			Segments: []string{
				TokenSpecies,
				TokenDensity,
				TokenCompartments,
				TokenRegeneration,
				"Coppice stools must be protected from browsing so that regrowth is established within {0} years of the felling.",
				"Failed stools must be replaced by planting to maintain the stocking density above for 10 years from the date of felling.",
			},
			Parameters: []TemplateParameter{
				{Index: 0, DefaultValue: "2", Description: "Years allowed for coppice regrowth to establish"},
			},
		},
	}
}

// LoadTemplates reads a JSON object of strategy key to template from path and
// overlays it on the defaults. An empty path returns the defaults.
func LoadTemplates(path string) (Templates, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read condition templates: %w", err)
	}
	var overrides Templates
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("decode condition templates: %w", err)
	}
	for key, tmpl := range overrides {
		if _, ok := templates[key]; !ok {
			return nil, fmt.Errorf("unknown condition template key %q", key)
		}
		if tmpl.Name == "" {
			tmpl.Name = templates[key].Name
		}
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
		templates[key] = tmpl
	}
	return templates, nil
}
