package fetch

import (
	"context"
	"strings"

	"github.com/kingswood/clienthub/agent/contract"
)

// OpportunityContext renders the selected opportunity as a curated block and
// reports the external job id found in its custom fields, so callers can
// carry the id into project-system lookups.
func OpportunityContext(ctx context.Context, gw contract.CRMGateway, sc contract.SessionContext) (text string, jobID string) {
	if sc.OpportunityID == "" {
		return "", ""
	}
	opp, err := gw.GetOpportunity(ctx, sc.OpportunityID)
	if err != nil {
		return "=== OPPORTUNITY ERROR ===\n" + err.Error(), ""
	}

	jobID = sc.JobID
	if jobID == "" {
		jobID = opp.ExternalJobID()
	}

	lines := []string{"=== SELECTED OPPORTUNITY ==="}
	add := func(label, val string) {
		if val != "" {
			lines = append(lines, label+": "+val)
		}
	}
	add("Name", opp.Name)
	add("Status", opp.Status)
	add("Pipeline Stage", opp.ResolvedStageName())
	if opp.MonetaryValue != 0 {
		add("Monetary Value", FormatValue(opp.MonetaryValue))
	}
	add("Communication Channel", string(contract.ChannelForStage(opp.ResolvedStageName())))
	add("Job ID", jobID)
	for _, cf := range opp.CustomFields {
		if rendered := FormatValue(cf.Value); rendered != "" {
			add(cf.Label(), rendered)
		}
	}

	return strings.Join(lines, "\n"), jobID
}
