// internal/thresholds/load.go
package thresholds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// ConfigError reports every structural problem found in a thresholds
// document. There is no built-in default configuration, so a missing file
// is itself a ConfigError.
type ConfigError struct {
	Source   string
	Problems []string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("invalid thresholds config")
	if e.Source != "" {
		b.WriteString(" " + e.Source)
	}
	if len(e.Problems) == 1 {
		b.WriteString(": " + e.Problems[0])
		return b.String()
	}
	fmt.Fprintf(&b, ": %d problems", len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - " + p)
	}
	return b.String()
}

// Load reads, parses and validates the thresholds document at path.
// Validation is eager and exhaustive: every problem in the document is
// collected into the returned *ConfigError, not just the first.
func Load(path string) (*Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Source: path, Problems: []string{"thresholds file not found"}}
		}
		return nil, &ConfigError{Source: path, Problems: []string{fmt.Sprintf("reading thresholds file: %v", err)}}
	}

	t, err := Parse(data)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Source = path
		}
		return nil, err
	}
	return t, nil
}

// Parse validates a raw thresholds document.
func Parse(data []byte) (*Thresholds, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("malformed JSON: %v", err)}}
	}

	ld := &loader{}
	t := &Thresholds{}

	t.Version = ld.version(doc)

	if raw, ok := doc["daily_targets"]; ok {
		t.DailyTargets = ld.dailyTargets(raw)
	} else {
		ld.addf("missing required section: 'daily_targets'")
	}
	if raw, ok := doc["glucose_scoring"]; ok {
		t.GlucoseScoring = ld.glucoseScoring(raw)
	} else {
		ld.addf("missing required section: 'glucose_scoring'")
	}
	if raw, ok := doc["curve_classification"]; ok {
		t.CurveClassification = ld.curveClassification(raw)
	} else {
		ld.addf("missing required section: 'curve_classification'")
	}
	if raw, ok := doc["explain_messages"]; ok {
		t.ExplainMessages = ld.explainMessages(raw)
	} else {
		ld.addf("missing required section: 'explain_messages'")
	}

	if len(ld.problems) > 0 {
		return nil, &ConfigError{Problems: ld.problems}
	}
	return t, nil
}

// loader accumulates validation problems while building the document.
type loader struct {
	problems []string
}

func (l *loader) addf(format string, args ...any) {
	l.problems = append(l.problems, fmt.Sprintf(format, args...))
}

func (l *loader) version(doc map[string]json.RawMessage) int {
	raw, ok := doc["version"]
	if !ok {
		l.addf("missing required field: 'version'")
		return 0
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil || v < 1 {
		l.addf("'version' must be a positive integer")
		return 0
	}
	return v
}

func (l *loader) dailyTargets(raw json.RawMessage) DailyTargets {
	var w struct {
		SugarG       *float64 `json:"sugar_g"`
		GlycemicLoad *float64 `json:"glycemic_load"`
		ProteinG     *float64 `json:"protein_g"`
		FatPct       *float64 `json:"fat_pct"`
		CarbsPct     *float64 `json:"carbs_pct"`
		CaloriesMin  *float64 `json:"calories_min"`
		CaloriesMax  *float64 `json:"calories_max"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		l.addf("daily_targets must be an object of numbers: %v", err)
		return DailyTargets{}
	}

	var t DailyTargets
	t.SugarG = l.requiredNumber("daily_targets.sugar_g", w.SugarG)
	t.GlycemicLoad = l.requiredNumber("daily_targets.glycemic_load", w.GlycemicLoad)
	t.ProteinG = l.requiredNumber("daily_targets.protein_g", w.ProteinG)
	t.FatPct = l.requiredNumber("daily_targets.fat_pct", w.FatPct)
	t.CarbsPct = l.requiredNumber("daily_targets.carbs_pct", w.CarbsPct)
	t.CaloriesMin = l.requiredNumber("daily_targets.calories_min", w.CaloriesMin)
	t.CaloriesMax = l.requiredNumber("daily_targets.calories_max", w.CaloriesMax)
	return t
}

func (l *loader) requiredNumber(path string, v *float64) float64 {
	if v == nil {
		l.addf("%s: missing required field", path)
		return 0
	}
	return *v
}

func (l *loader) glucoseScoring(raw json.RawMessage) GlucoseScoring {
	var w struct {
		CarbRiskRanges       json.RawMessage `json:"carb_risk_ranges"`
		GISpeedFactors       json.RawMessage `json:"gi_speed_factors"`
		FatDelayRanges       json.RawMessage `json:"fat_delay_ranges"`
		ProteinTailRanges    json.RawMessage `json:"protein_tail_ranges"`
		FiberBufferRanges    json.RawMessage `json:"fiber_buffer_ranges"`
		RiskScoreWeights     json.RawMessage `json:"risk_score_weights"`
		RiskRatingThresholds json.RawMessage `json:"risk_rating_thresholds"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		l.addf("glucose_scoring must be an object: %v", err)
		return GlucoseScoring{}
	}

	var s GlucoseScoring
	s.CarbRiskRanges = l.numberTable(w.CarbRiskRanges, "glucose_scoring.carb_risk_ranges")
	s.GISpeedFactors = l.numberTable(w.GISpeedFactors, "glucose_scoring.gi_speed_factors")
	s.FatDelayRanges = l.numberTable(w.FatDelayRanges, "glucose_scoring.fat_delay_ranges")
	s.ProteinTailRanges = l.numberTable(w.ProteinTailRanges, "glucose_scoring.protein_tail_ranges")
	s.FiberBufferRanges = l.numberTable(w.FiberBufferRanges, "glucose_scoring.fiber_buffer_ranges")
	s.RiskScoreWeights = l.weights(w.RiskScoreWeights)
	s.RiskRatingThresholds = l.ratingTable(w.RiskRatingThresholds, "glucose_scoring.risk_rating_thresholds")
	return s
}

func (l *loader) weights(raw json.RawMessage) Weights {
	const path = "glucose_scoring.risk_score_weights"
	if raw == nil {
		l.addf("%s: missing required field", path)
		return Weights{}
	}
	var w struct {
		FatDelay    *float64 `json:"fat_delay"`
		ProteinTail *float64 `json:"protein_tail"`
		FiberBuffer *float64 `json:"fiber_buffer"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		l.addf("%s must be an object of numbers: %v", path, err)
		return Weights{}
	}
	return Weights{
		FatDelay:    l.requiredNumber(path+".fat_delay", w.FatDelay),
		ProteinTail: l.requiredNumber(path+".protein_tail", w.ProteinTail),
		FiberBuffer: l.requiredNumber(path+".fiber_buffer", w.FiberBuffer),
	}
}

func (l *loader) curveClassification(raw json.RawMessage) CurveClassification {
	var w map[string]json.RawMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		l.addf("curve_classification must be an object: %v", err)
		return CurveClassification{}
	}

	var c CurveClassification
	c.VeryLowCarbMax = l.curveRule(w, "very_low_carb_max")
	c.DelayedSpike = l.curveRule(w, "delayed_spike")
	c.DoubleHump = l.curveRule(w, "double_hump")
	c.BluntedSpike = l.curveRule(w, "blunted_spike")
	c.SpikeThenDip = l.curveRule(w, "spike_then_dip")
	c.Default = l.curveRule(w, "default")
	return c
}

// placeholderPattern matches {name} tokens in curve descriptions.
var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

var knownPlaceholders = map[string]bool{
	"{carbs}":      true,
	"{fiber}":      true,
	"{risk_score}": true,
}

func (l *loader) curveRule(section map[string]json.RawMessage, name string) CurveRule {
	path := "curve_classification." + name
	raw, ok := section[name]
	if !ok {
		l.addf("curve_classification: missing rule '%s'", name)
		return CurveRule{}
	}

	var w struct {
		MinCarbs    *float64 `json:"min_carbs"`
		MaxCarbs    *float64 `json:"max_carbs"`
		MinGI       *float64 `json:"min_gi"`
		MaxGI       *float64 `json:"max_gi"`
		MinFat      *float64 `json:"min_fat"`
		MaxFat      *float64 `json:"max_fat"`
		MinProtein  *float64 `json:"min_protein"`
		MaxProtein  *float64 `json:"max_protein"`
		MinFiber    *float64 `json:"min_fiber"`
		MaxFiber    *float64 `json:"max_fiber"`
		Label       *string  `json:"label"`
		Description *string  `json:"description"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		l.addf("%s must be an object: %v", path, err)
		return CurveRule{}
	}

	r := CurveRule{
		MinCarbs:   w.MinCarbs,
		MaxCarbs:   w.MaxCarbs,
		MinGI:      w.MinGI,
		MaxGI:      w.MaxGI,
		MinFat:     w.MinFat,
		MaxFat:     w.MaxFat,
		MinProtein: w.MinProtein,
		MaxProtein: w.MaxProtein,
		MinFiber:   w.MinFiber,
		MaxFiber:   w.MaxFiber,
	}

	if w.Label == nil || *w.Label == "" {
		l.addf("%s: missing 'label'", path)
	} else {
		r.Label = *w.Label
	}
	if w.Description == nil || *w.Description == "" {
		l.addf("%s: missing 'description'", path)
	} else {
		r.Description = *w.Description
		for _, ph := range placeholderPattern.FindAllString(r.Description, -1) {
			if !knownPlaceholders[ph] {
				l.addf("%s.description: unknown placeholder '%s'", path, ph)
			}
		}
	}
	return r
}

func (l *loader) explainMessages(raw json.RawMessage) ExplainMessages {
	var w struct {
		CarbRanges              json.RawMessage `json:"carb_ranges"`
		GIRanges                json.RawMessage `json:"gi_ranges"`
		FatRanges               json.RawMessage `json:"fat_ranges"`
		ProteinRanges           json.RawMessage `json:"protein_ranges"`
		FiberRanges             json.RawMessage `json:"fiber_ranges"`
		RiskScoreInterpretation json.RawMessage `json:"risk_score_interpretation"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		l.addf("explain_messages must be an object: %v", err)
		return ExplainMessages{}
	}

	var m ExplainMessages
	m.CarbRanges = l.messageTable(w.CarbRanges, "explain_messages.carb_ranges")
	m.GIRanges = l.messageTable(w.GIRanges, "explain_messages.gi_ranges")
	m.FatRanges = l.messageTable(w.FatRanges, "explain_messages.fat_ranges")
	m.ProteinRanges = l.messageTable(w.ProteinRanges, "explain_messages.protein_ranges")
	m.FiberRanges = l.messageTable(w.FiberRanges, "explain_messages.fiber_ranges")
	m.RiskScoreInterpretation = l.messageTable(w.RiskScoreInterpretation, "explain_messages.risk_score_interpretation")
	return m
}

// rangeEntryWire is the wire shape of one range entry. Max is kept raw so
// that an absent field and an explicit null are distinguishable: only
// "max": null marks the terminal entry.
type rangeEntryWire struct {
	Max     json.RawMessage `json:"max"`
	Value   *float64        `json:"value"`
	Rating  *string         `json:"rating"`
	Message *string         `json:"message"`
}

type parsedEntry struct {
	max  *float64
	wire rangeEntryWire
}

func (l *loader) rangeEntries(raw json.RawMessage, path string) []parsedEntry {
	if raw == nil {
		l.addf("%s: missing required field", path)
		return nil
	}
	var wire []rangeEntryWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		l.addf("%s must be an array of range objects: %v", path, err)
		return nil
	}
	if len(wire) == 0 {
		l.addf("%s cannot be empty", path)
		return nil
	}

	entries := make([]parsedEntry, 0, len(wire))
	var prev *float64
	for i, e := range wire {
		last := i == len(wire)-1
		var max *float64
		switch {
		case e.Max == nil:
			l.addf("%s[%d]: missing 'max' field", path, i)
		case string(e.Max) == "null":
			if !last {
				l.addf("%s[%d]: only the last entry may have 'max': null", path, i)
			}
		default:
			var f float64
			if err := json.Unmarshal(e.Max, &f); err != nil {
				l.addf("%s[%d].max must be a number or null", path, i)
				break
			}
			max = &f
			if last {
				l.addf("%s: last entry must have 'max': null", path)
			}
			if prev != nil && f <= *prev {
				l.addf("%s[%d].max must be greater than previous max", path, i)
			}
			prev = max
		}
		entries = append(entries, parsedEntry{max: max, wire: e})
	}
	return entries
}

func (l *loader) numberTable(raw json.RawMessage, path string) []Range[float64] {
	entries := l.rangeEntries(raw, path)
	table := make([]Range[float64], 0, len(entries))
	for i, e := range entries {
		if e.wire.Value == nil {
			l.addf("%s[%d]: missing 'value' payload", path, i)
			continue
		}
		table = append(table, Range[float64]{Max: e.max, Payload: *e.wire.Value})
	}
	return table
}

var validRatings = map[string]bool{
	"low":       true,
	"medium":    true,
	"high":      true,
	"very_high": true,
}

func (l *loader) ratingTable(raw json.RawMessage, path string) []Range[string] {
	entries := l.rangeEntries(raw, path)
	table := make([]Range[string], 0, len(entries))
	for i, e := range entries {
		if e.wire.Rating == nil {
			l.addf("%s[%d]: missing 'rating' payload", path, i)
			continue
		}
		if !validRatings[*e.wire.Rating] {
			l.addf("%s[%d]: unknown rating '%s'", path, i, *e.wire.Rating)
			continue
		}
		table = append(table, Range[string]{Max: e.max, Payload: *e.wire.Rating})
	}
	return table
}

func (l *loader) messageTable(raw json.RawMessage, path string) []Range[string] {
	entries := l.rangeEntries(raw, path)
	table := make([]Range[string], 0, len(entries))
	for i, e := range entries {
		if e.wire.Message == nil || *e.wire.Message == "" {
			l.addf("%s[%d]: missing 'message' payload", path, i)
			continue
		}
		table = append(table, Range[string]{Max: e.max, Payload: *e.wire.Message})
	}
	return table
}
