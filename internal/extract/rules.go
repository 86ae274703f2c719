package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule is one prioritized matching rule. Rules are evaluated in a fixed,
// documented order against a text fragment and the first success wins; a
// miss is not an error, it just yields no observation.
type Rule interface {
	Name() string
	Apply(text string) (float64, bool)
}

// AbsoluteLabelRule matches a labeled absolute figure such as
// "GDP Growth: 3.4%". The whole document is scanned and the first match
// wins.
type AbsoluteLabelRule struct {
	label string
	re    *regexp.Regexp
}

func NewAbsoluteLabelRule(label string) *AbsoluteLabelRule {
	return &AbsoluteLabelRule{
		label: label,
		re:    regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `:?\s*(\d+\.?\d*)%?`),
	}
}

func (r *AbsoluteLabelRule) Name() string {
	return "absolute_label:" + r.label
}

func (r *AbsoluteLabelRule) Apply(text string) (float64, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseCaptured(m[1])
}

// PhraseChangeRule matches a relative-change phrase such as "increased by
// 8.5%". Decrease and decline phrasings negate the captured value.
type PhraseChangeRule struct {
	name   string
	re     *regexp.Regexp
	negate bool
}

func (r *PhraseChangeRule) Name() string {
	return "phrase_change:" + r.name
}

func (r *PhraseChangeRule) Apply(text string) (float64, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, ok := parseCaptured(m[1])
	if !ok {
		return 0, false
	}
	if r.negate {
		v = -v
	}
	return v, true
}

// IndustryRules returns the ordered phrase rules applied inside an industry
// subsection. Order matters: the first rule that matches wins, even when a
// later rule could match a different number in the same subsection.
func IndustryRules() []Rule {
	return []Rule{
		&PhraseChangeRule{name: "increased_by", re: regexp.MustCompile(`(?i)(?:increased|grew|rose) by (\d+\.?\d*)%`)},
		&PhraseChangeRule{name: "decreased_by", re: regexp.MustCompile(`(?i)(?:decreased|declined|fell) by (\d+\.?\d*)%`), negate: true},
		&PhraseChangeRule{name: "growth_of", re: regexp.MustCompile(`(?i)growth of (\d+\.?\d*)%`)},
		&PhraseChangeRule{name: "decline_of", re: regexp.MustCompile(`(?i)decline of (\d+\.?\d*)%`), negate: true},
		&PhraseChangeRule{name: "percent_increase", re: regexp.MustCompile(`(?i)(\d+\.?\d*)% increase`)},
		&PhraseChangeRule{name: "percent_decrease", re: regexp.MustCompile(`(?i)(\d+\.?\d*)% decrease`), negate: true},
	}
}

// TradeValueRules returns the ordered rules capturing a bilateral trade
// dollar figure in billions. All patterns are case-insensitive.
func TradeValueRules() []Rule {
	return []Rule{
		&PhraseChangeRule{name: "bilateral_trade_value", re: regexp.MustCompile(`(?i)bilateral trade[^.\n]*?\$?(\d+\.?\d*)\s*billion`)},
		&PhraseChangeRule{name: "us_uae_trade", re: regexp.MustCompile(`(?i)US and UAE[^.\n]*?\$?(\d+\.?\d*)\s*billion`)},
		&PhraseChangeRule{name: "trade_value", re: regexp.MustCompile(`(?i)trade value[^.\n]*?\$?(\d+\.?\d*)\s*billion`)},
	}
}

// ApplyFirst runs rules in order and returns the first match.
func ApplyFirst(rules []Rule, text string) (float64, bool) {
	for _, rule := range rules {
		if v, ok := rule.Apply(text); ok {
			return v, true
		}
	}
	return 0, false
}

// NormalizeMetricKey lowercases a metric name and replaces spaces with
// underscores so "Real Estate" and "real estate" share one series.
func NormalizeMetricKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// SectionFor isolates the subsection under the heading that mentions name,
// delimited by the next heading or end of document. Returns "" when no such
// heading exists.
func SectionFor(text, name string) string {
	headingRe := regexp.MustCompile(`(?im)^#{1,6}\s*.*$`)
	locs := headingRe.FindAllStringIndex(text, -1)
	lower := strings.ToLower(name)

	for i, loc := range locs {
		heading := strings.ToLower(text[loc[0]:loc[1]])
		if !strings.Contains(heading, lower) {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return text[loc[1]:end]
	}
	return ""
}

func parseCaptured(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
