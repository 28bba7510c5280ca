package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/internal/repository"
	"github.com/user/listing-ingestor/pkg/utils"
)

// blockFencePattern wants the closing fence on its own line so backticks inside
// JSON strings do not end the block early.
var (
	blockFencePattern  = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n(.*?)\r?\n[ \t]*```")
	inlineFencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*(.*?)```")
)

// fieldAliases lets camelCase keys through, some models ignore the requested casing.
var fieldAliases = map[string]string{
	entity.FieldImageURLs:    "imageUrls",
	entity.FieldBuildingName: "buildingName",
}

// Validator turns raw model output into a ValidatedListing.
type Validator struct {
	policy entity.AmenityPolicy
}

func NewValidator(policy entity.AmenityPolicy) *Validator {
	if policy != entity.AmenityStrict {
		policy = entity.AmenityPermissive
	}
	return &Validator{policy: policy}
}

// StripCodeFence returns the body of the first markdown code fence in raw, or raw
// trimmed when there is none. Output that already starts as JSON is never searched.
func StripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	if m := blockFencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := inlineFencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	// Unterminated fence, usually a truncated response: drop the opening line.
	if strings.HasPrefix(trimmed, "```") {
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
			return strings.TrimSpace(trimmed[i+1:])
		}
		return ""
	}
	return trimmed
}

// Validate parses raw as a listing object. Anything that is not exactly one JSON
// object is a *repository.MalformedExtractionError; individual fields never fail.
func (v *Validator) Validate(raw string) (*entity.ValidatedListing, error) {
	body := StripCodeFence(raw)

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, malformed(raw, err)
	}
	if fields == nil {
		return nil, malformed(raw, errors.New("output is not a JSON object"))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, malformed(raw, errors.New("unexpected data after JSON object"))
	}

	out := &entity.ValidatedListing{Outcomes: make(map[string]entity.FieldOutcome, len(entity.ListingFields))}
	l := &out.Listing

	l.Title, out.Outcomes[entity.FieldTitle] = textField(lookup(fields, entity.FieldTitle), false)
	l.Description, out.Outcomes[entity.FieldDescription] = textField(lookup(fields, entity.FieldDescription), false)
	l.Price, out.Outcomes[entity.FieldPrice] = intField(lookup(fields, entity.FieldPrice))
	l.Sqm, out.Outcomes[entity.FieldSqm] = floatField(lookup(fields, entity.FieldSqm))
	l.Layout, out.Outcomes[entity.FieldLayout] = textField(lookup(fields, entity.FieldLayout), false)
	l.Floor, out.Outcomes[entity.FieldFloor] = textField(lookup(fields, entity.FieldFloor), true)
	l.Amenities, out.FlaggedAmenities, out.Outcomes[entity.FieldAmenities] = v.amenitiesField(lookup(fields, entity.FieldAmenities))
	l.ImageURLs, out.Outcomes[entity.FieldImageURLs] = imageURLsField(lookup(fields, entity.FieldImageURLs))
	l.BuildingName, out.Outcomes[entity.FieldBuildingName] = textField(lookup(fields, entity.FieldBuildingName), false)
	l.Area, out.Outcomes[entity.FieldArea] = textField(lookup(fields, entity.FieldArea), false)

	return out, nil
}

func malformed(raw string, err error) error {
	snippet := []rune(strings.TrimSpace(raw))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return &repository.MalformedExtractionError{Snippet: string(snippet), Err: err}
}

type fieldValue struct {
	value any
	found bool
}

func lookup(fields map[string]any, name string) fieldValue {
	if v, ok := fields[name]; ok {
		return fieldValue{value: v, found: true}
	}
	if alias, ok := fieldAliases[name]; ok {
		if v, ok := fields[alias]; ok {
			return fieldValue{value: v, found: true}
		}
	}
	return fieldValue{}
}

func (f fieldValue) missing() bool {
	return !f.found || f.value == nil
}

// textField accepts strings, and numbers too when allowNumber is set (floor "12" vs 12).
func textField(f fieldValue, allowNumber bool) (string, entity.FieldOutcome) {
	if f.missing() {
		return "", entity.OutcomeDefaulted
	}
	switch val := f.value.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return s, entity.OutcomePresent
		}
		return "", entity.OutcomeDefaulted
	case json.Number:
		if allowNumber {
			return val.String(), entity.OutcomePresent
		}
	}
	return "", entity.OutcomeInvalid
}

func numberValue(f fieldValue) (float64, bool) {
	switch val := f.value.(type) {
	case json.Number:
		n, err := val.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return n, err == nil
	}
	return 0, false
}

func intField(f fieldValue) (int64, entity.FieldOutcome) {
	if f.missing() {
		return 0, entity.OutcomeDefaulted
	}
	if s, ok := f.value.(string); ok && strings.TrimSpace(s) == "" {
		return 0, entity.OutcomeDefaulted
	}
	if n, ok := f.value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return nonNegativeInt(i)
		}
	}
	n, ok := numberValue(f)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n >= math.MaxInt64 {
		return 0, entity.OutcomeInvalid
	}
	return nonNegativeInt(int64(math.Round(n)))
}

func nonNegativeInt(i int64) (int64, entity.FieldOutcome) {
	switch {
	case i < 0:
		return 0, entity.OutcomeInvalid
	case i == 0:
		return 0, entity.OutcomeDefaulted
	}
	return i, entity.OutcomePresent
}

func floatField(f fieldValue) (float64, entity.FieldOutcome) {
	if f.missing() {
		return 0, entity.OutcomeDefaulted
	}
	if s, ok := f.value.(string); ok && strings.TrimSpace(s) == "" {
		return 0, entity.OutcomeDefaulted
	}
	n, ok := numberValue(f)
	switch {
	case !ok || math.IsNaN(n) || math.IsInf(n, 0) || n < 0:
		return 0, entity.OutcomeInvalid
	case n == 0:
		return 0, entity.OutcomeDefaulted
	}
	return n, entity.OutcomePresent
}

func (v *Validator) amenitiesField(f fieldValue) ([]string, []string, entity.FieldOutcome) {
	amenities := []string{}
	if f.missing() {
		return amenities, nil, entity.OutcomeDefaulted
	}
	items, ok := f.value.([]any)
	if !ok {
		return amenities, nil, entity.OutcomeInvalid
	}

	var flagged []string
	invalid := false
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			invalid = true
			continue
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if !entity.IsKnownAmenity(s) {
			flagged = append(flagged, s)
			if v.policy == entity.AmenityStrict {
				invalid = true
				continue
			}
		}
		amenities = append(amenities, s)
	}

	switch {
	case invalid:
		return amenities, flagged, entity.OutcomeInvalid
	case len(amenities) == 0:
		return amenities, flagged, entity.OutcomeDefaulted
	}
	return amenities, flagged, entity.OutcomePresent
}

func imageURLsField(f fieldValue) ([]string, entity.FieldOutcome) {
	urls := []string{}
	if f.missing() {
		return urls, entity.OutcomeDefaulted
	}
	items, ok := f.value.([]any)
	if !ok {
		return urls, entity.OutcomeInvalid
	}

	invalid := false
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			invalid = true
			continue
		}
		s = strings.TrimSpace(s)
		if !utils.IsHTTPURL(s) {
			invalid = true
			continue
		}
		urls = append(urls, s)
	}

	switch {
	case invalid:
		return urls, entity.OutcomeInvalid
	case len(urls) == 0:
		return urls, entity.OutcomeDefaulted
	}
	return urls, entity.OutcomePresent
}
