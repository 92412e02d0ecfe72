// Package intent maps a raw user utterance to the data topics the assistant
// should fetch context for. Detection is a set of independent pattern tests:
// topics are not mutually exclusive and no topic outranks another here.
package intent

import "regexp"

var (
	crmPattern       = regexp.MustCompile(`(?i)note|message|conversation|history|communication|crm|email|sms|task|meeting|transcript|follow.?up|last.?contact|overview|summary`)
	jobsPattern      = regexp.MustCompile(`(?i)job|project|budget|cost|revenue|schedule|daily.?log|comment|active.*job|profit|margin`)
	teamPattern      = regexp.MustCompile(`(?i)team|member|assign|who.*work|staff|employee|crew`)
	customersPattern = regexp.MustCompile(`(?i)customer|client.*list|all.*client|account`)
	vendorsPattern   = regexp.MustCompile(`(?i)vendor|supplier|sub\b|trade.*partner`)
)

// Intent is the set of topics detected in one user message.
type Intent struct {
	CRMData   bool
	Jobs      bool
	Team      bool
	Customers bool
	Vendors   bool
}

// Detect classifies a user message. Pure function: empty or whitespace-only
// text yields no matches and relies on the caller-level fallback.
func Detect(message string) Intent {
	return Intent{
		CRMData:   crmPattern.MatchString(message),
		Jobs:      jobsPattern.MatchString(message),
		Team:      teamPattern.MatchString(message),
		Customers: customersPattern.MatchString(message),
		Vendors:   vendorsPattern.MatchString(message),
	}
}

// Any reports whether at least one topic matched.
func (i Intent) Any() bool {
	return i.CRMData || i.Jobs || i.Team || i.Customers || i.Vendors
}

// WithFallback applies the no-match default: CRM data when a client is
// selected, otherwise the active-jobs overview.
func (i Intent) WithFallback(clientSelected bool) Intent {
	if i.Any() {
		return i
	}
	if clientSelected {
		i.CRMData = true
	} else {
		i.Jobs = true
	}
	return i
}

// NeedsProject reports whether any project-system topic matched.
func (i Intent) NeedsProject() bool {
	return i.Jobs || i.Team || i.Customers || i.Vendors
}
