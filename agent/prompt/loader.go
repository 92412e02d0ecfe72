package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/knowitall.txt
	knowItAllRaw string

	//go:embed template/dataentry.txt
	dataEntryRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	KnowItAll string
	DataEntry string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		KnowItAll: strings.TrimSpace(knowItAllRaw),
		DataEntry: strings.TrimSpace(dataEntryRaw),
	}
}
