package properties

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Patch is an untyped attribute payload keyed by JSON field name, as received from
// a form or a flattened JSON object. Only keys present in the payload are applied.
type Patch struct {
	values url.Values
}

// PatchFromValues builds a Patch from form values.
func PatchFromValues(values url.Values) Patch {
	return Patch{values: values}
}

// PatchFromJSON builds a Patch from a JSON object. Scalars become their text form,
// arrays become repeated values, and null clears the field.
func PatchFromJSON(data []byte) (Patch, error) {
	values, err := decodeJSONValues(data)
	if err != nil {
		return Patch{}, err
	}
	return Patch{values: values}, nil
}

// Has reports whether key was supplied.
func (p Patch) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Empty reports whether the patch supplies no applicable attribute.
func (p Patch) Empty() bool {
	for key := range p.values {
		if _, ok := fieldKeys[key]; ok {
			return false
		}
	}
	return true
}

// Apply writes every supplied attribute onto rec. The id and featureImage keys
// are ignored. A numeric value that does not parse is an ErrValidation naming the field.
func (p Patch) Apply(rec *Property) error {
	for _, f := range textFields {
		if v, ok := p.first(f.key); ok {
			*f.field(rec) = v
		}
	}

	for _, f := range intFields {
		v, ok := p.first(f.key)
		if !ok {
			continue
		}
		n, err := parseInt(f.key, v)
		if err != nil {
			return err
		}
		*f.field(rec) = n
	}

	for _, f := range floatFields {
		v, ok := p.first(f.key)
		if !ok {
			continue
		}
		n, err := parseFloat(f.key, v)
		if err != nil {
			return err
		}
		*f.field(rec) = n
	}

	if raw, ok := p.values["amenities"]; ok {
		rec.Amenities = splitTags(raw)
	}

	return nil
}

func (p Patch) first(key string) (string, bool) {
	vs, ok := p.values[key]
	if !ok {
		return "", false
	}
	if len(vs) == 0 {
		return "", true
	}
	return vs[0], true
}

type textField struct {
	key   string
	field func(*Property) *string
}

type intField struct {
	key   string
	field func(*Property) **int
}

type floatField struct {
	key   string
	field func(*Property) **float64
}

var textFields = []textField{
	{"propertyTitle", func(p *Property) *string { return &p.PropertyTitle }},
	{"propertyType", func(p *Property) *string { return &p.PropertyType }},
	{"propertyDescription", func(p *Property) *string { return &p.PropertyDescription }},
	{"builderName", func(p *Property) *string { return &p.BuilderName }},
	{"propertyID", func(p *Property) *string { return &p.PropertyID }},
	{"parentProperty", func(p *Property) *string { return &p.ParentProperty }},
	{"status", func(p *Property) *string { return &p.Status }},
	{"label", func(p *Property) *string { return &p.Label }},
	{"material", func(p *Property) *string { return &p.Material }},
	{"location", func(p *Property) *string { return &p.Location }},
	{"pinCode", func(p *Property) *string { return &p.PinCode }},
	{"builtDimentions", func(p *Property) *string { return &p.BuiltDimentions }},
}

var intFields = []intField{
	{"rooms", func(p *Property) **int { return &p.Rooms }},
	{"bedsroom", func(p *Property) **int { return &p.Bedsroom }},
	{"kitchen", func(p *Property) **int { return &p.Kitchen }},
	{"bhk", func(p *Property) **int { return &p.BHK }},
	{"yearBuilt", func(p *Property) **int { return &p.YearBuilt }},
}

var floatFields = []floatField{
	{"totalhomeArea", func(p *Property) **float64 { return &p.TotalhomeArea }},
	{"openArea", func(p *Property) **float64 { return &p.OpenArea }},
	{"price", func(p *Property) **float64 { return &p.Price }},
	{"area", func(p *Property) **float64 { return &p.Area }},
}

var fieldKeys = func() map[string]struct{} {
	keys := map[string]struct{}{"amenities": {}}
	for _, f := range textFields {
		keys[f.key] = struct{}{}
	}
	for _, f := range intFields {
		keys[f.key] = struct{}{}
	}
	for _, f := range floatFields {
		keys[f.key] = struct{}{}
	}
	return keys
}()

// parseInt coerces text to an integer. Empty text clears the field.
// Whole-valued decimals such as "2.0" are accepted.
func parseInt(key, raw string) (*int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return nil, fmt.Errorf("%w: %s must be a whole number, got %q", ErrValidation, key, raw)
	}
	n := int(f)
	return &n, nil
}

// parseFloat coerces text to a number. Empty text clears the field.
func parseFloat(key, raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", ErrValidation, key, raw)
	}
	return &f, nil
}

// splitTags flattens repeated and comma-separated values into a trimmed,
// deduplicated tag list, preserving first occurrence order.
func splitTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, v := range raw {
		for part := range strings.SplitSeq(v, ",") {
			tag := strings.TrimSpace(part)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	return tags
}

func decodeJSONValues(data []byte) (url.Values, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object: %v", ErrValidation, err)
	}

	values := make(url.Values, len(obj))
	for key, raw := range obj {
		switch v := raw.(type) {
		case []any:
			list := make([]string, 0, len(v))
			for _, item := range v {
				s, err := scalarText(key, item)
				if err != nil {
					return nil, err
				}
				list = append(list, s)
			}
			values[key] = list
		default:
			s, err := scalarText(key, v)
			if err != nil {
				return nil, err
			}
			values[key] = []string{s}
		}
	}

	return values, nil
}

func scalarText(key string, v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%w: %s must be a scalar value", ErrValidation, key)
	}
}
