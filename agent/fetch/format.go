package fetch

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Internal bookkeeping keys the CRM attaches to contact records. These carry
// no information a human (or the model) needs.
var skipFields = map[string]struct{}{
	"id":                 {},
	"locationId":         {},
	"fingerprint":        {},
	"firstNameLowerCase": {},
	"lastNameLowerCase":  {},
	"fullNameLowerCase":  {},
	"emailLowerCase":     {},
	"contactName":        {},
	"companyLowerCase":   {},
	"__v":                {},
	"deleted":            {},
	"type":               {},
}

// priorityFields are rendered first, in this order, with human labels.
var priorityFields = [][2]string{
	{"firstName", "First Name"},
	{"lastName", "Last Name"},
	{"email", "Email"},
	{"phone", "Phone"},
	{"companyName", "Company"},
	{"address1", "Address"},
	{"city", "City"},
	{"state", "State"},
	{"postalCode", "Postal Code"},
	{"country", "Country"},
	{"website", "Website"},
	{"source", "Lead Source"},
	{"dateAdded", "Date Added"},
	{"dateOfBirth", "Date of Birth"},
	{"assignedTo", "Assigned To"},
	{"dnd", "Do Not Disturb"},
	{"lastActivity", "Last Activity"},
}

// FormatValue renders any JSON-decoded value for display: booleans become
// Yes/No, arrays of key/value-shaped objects become "key: value" joined by
// commas, nested objects collapse to compact JSON. Empty values render "".
func FormatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		if len(v) == 0 {
			return ""
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatListItem(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return compactJSON(v)
	default:
		return fmt.Sprint(v)
	}
}

func formatListItem(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return FormatValue(item)
	}
	if value, ok := obj["value"]; ok {
		if rendered := FormatValue(value); rendered != "" {
			return fieldLabel(obj) + ": " + rendered
		}
	}
	return compactJSON(obj)
}

func fieldLabel(obj map[string]any) string {
	for _, key := range []string{"fieldKey", "key", "id"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return "field"
}

func compactJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

// FormatContactProfile renders every populated field of a contact record:
// the priority fields first with human labels and formatted dates, then
// tags, custom fields, additional contact points and opportunities, then a
// catch-all pass over whatever keys remain. Fields in the skip-set and
// fields whose rendered value is empty (or an empty collection literal) are
// omitted; everything else must appear.
func FormatContactProfile(contact map[string]any) []string {
	lines := make([]string, 0, len(contact))
	used := make(map[string]struct{}, len(contact))

	for _, pf := range priorityFields {
		key, label := pf[0], pf[1]
		used[key] = struct{}{}
		val := FormatValue(contact[key])
		if val == "" {
			continue
		}
		if key == "dateAdded" || key == "lastActivity" {
			val = formatTimestamp(val)
		}
		lines = append(lines, label+": "+val)
	}

	if tags, ok := contact["tags"].([]any); ok && len(tags) > 0 {
		lines = append(lines, "Tags: "+joinStrings(tags))
		used["tags"] = struct{}{}
	}

	if fields, ok := contact["customFields"].([]any); ok && len(fields) > 0 {
		for _, item := range fields {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if rendered := FormatValue(obj["value"]); rendered != "" {
				lines = append(lines, fieldLabel(obj)+": "+rendered)
			}
		}
		used["customFields"] = struct{}{}
	}

	if emails, ok := contact["additionalEmails"].([]any); ok && len(emails) > 0 {
		lines = append(lines, "Additional Emails: "+joinStrings(emails))
		used["additionalEmails"] = struct{}{}
	}
	if phones, ok := contact["additionalPhones"].([]any); ok && len(phones) > 0 {
		parts := make([]string, 0, len(phones))
		for _, p := range phones {
			if obj, ok := p.(map[string]any); ok {
				if s, ok := obj["phone"].(string); ok && s != "" {
					parts = append(parts, s)
					continue
				}
			}
			parts = append(parts, FormatValue(p))
		}
		lines = append(lines, "Additional Phones: "+strings.Join(parts, ", "))
		used["additionalPhones"] = struct{}{}
	}

	if opps, ok := contact["opportunities"].([]any); ok && len(opps) > 0 {
		for _, item := range opps {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("Opportunity: %s | Value: %s | Status: %s",
				orDefault(FormatValue(obj["name"]), "Unnamed"),
				orDefault(FormatValue(obj["monetaryValue"]), "N/A"),
				orDefault(FormatValue(obj["status"]), "N/A")))
		}
		used["opportunities"] = struct{}{}
	}

	// Catch-all: any remaining populated field still gets emitted, in
	// sorted key order so the rendered profile is stable across requests.
	rest := make([]string, 0, len(contact))
	for key := range contact {
		if _, ok := used[key]; ok {
			continue
		}
		if _, ok := skipFields[key]; ok {
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	for _, key := range rest {
		val := FormatValue(contact[key])
		if val == "" || val == "[]" || val == "{}" {
			continue
		}
		lines = append(lines, key+": "+val)
	}

	return lines
}

func joinStrings(items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, FormatValue(item))
	}
	return strings.Join(parts, ", ")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// formatTimestamp renders an upstream timestamp for humans; unparseable
// values pass through untouched.
func formatTimestamp(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006 3:04 PM")
		}
	}
	return raw
}

// formatDate renders a date-only view of an upstream timestamp.
func formatDate(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("1/2/2006")
		}
	}
	if raw == "" {
		return "No date"
	}
	return raw
}

// truncate caps s at limit bytes without splitting a multi-byte rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
