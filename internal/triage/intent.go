package triage

import "regexp"

// emergencyPattern matches accident-related wording anywhere in a message.
// Emergency detection runs before any state handling and never advances the
// conversation step.
var emergencyPattern = regexp.MustCompile(`(?i)acidente|v[ií]tima|ferid[ao]|capot|batida|colis[aã]o|atropel`)

// IsEmergency reports whether the message describes an accident scenario.
func IsEmergency(message string) bool {
	return emergencyPattern.MatchString(message)
}

type serviceRule struct {
	pattern *regexp.Regexp
	label   string
}

// serviceRules is ordered: the first matching rule wins, so a message that
// mentions both towing and a mechanic resolves to towing.
var serviceRules = []serviceRule{
	{regexp.MustCompile(`(?i)guincho`), "Guincho"},
	{regexp.MustCompile(`(?i)pane\s*eletric|eletrica|el[eé]tric`), "Pane elétrica"},
	{regexp.MustCompile(`(?i)pneu`), "Pneu"},
	{regexp.MustCompile(`(?i)chaveir`), "Chaveiro"},
	{regexp.MustCompile(`(?i)mec[aâ]nic`), "Mecânico"},
}

// ResolveService maps free text to a canonical service label. The second
// return value is false when no rule matches.
func ResolveService(message string) (string, bool) {
	for _, rule := range serviceRules {
		if rule.pattern.MatchString(message) {
			return rule.label, true
		}
	}
	return "", false
}
