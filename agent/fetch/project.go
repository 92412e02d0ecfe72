package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kingswood/clienthub/agent/contract"
	"github.com/kingswood/clienthub/agent/intent"
	projectsysx "github.com/kingswood/clienthub/pkg/projectsys"
)

const maxJobs = 30

// ProjectContext assembles the project-system view the intent asks for:
// active jobs, team roster, customer and vendor accounts. Requested reads
// run concurrently and settle independently; sections always appear in the
// same order regardless of completion timing.
func ProjectContext(ctx context.Context, gw contract.ProjectGateway, it intent.Intent) string {
	var (
		jobs      []projectsysx.Job
		jobsErr   error
		team      []projectsysx.TeamMember
		teamErr   error
		customers []projectsysx.Account
		custErr   error
		vendors   []projectsysx.Account
		vendErr   error
	)

	var wg sync.WaitGroup
	if it.Jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobs, jobsErr = gw.ListActiveJobs(ctx, maxJobs)
		}()
	}
	if it.Team {
		wg.Add(1)
		go func() {
			defer wg.Done()
			team, teamErr = gw.ListTeamMembers(ctx)
		}()
	}
	if it.Customers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			customers, custErr = gw.ListCustomers(ctx)
		}()
	}
	if it.Vendors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vendors, vendErr = gw.ListVendors(ctx)
		}()
	}
	wg.Wait()

	var sections []string
	if it.Jobs {
		sections = append(sections, jobsSection(jobs, jobsErr))
	}
	if it.Team {
		sections = append(sections, teamSection(team, teamErr))
	}
	if it.Customers {
		sections = append(sections, accountsSection("CUSTOMERS", customers, custErr))
	}
	if it.Vendors {
		sections = append(sections, accountsSection("VENDORS", vendors, vendErr))
	}
	return strings.Join(sections, "\n\n")
}

func jobsSection(jobs []projectsysx.Job, err error) string {
	if err != nil {
		return "=== ACTIVE JOBS ERROR ===\n" + err.Error()
	}
	if len(jobs) == 0 {
		return "=== ACTIVE JOBS ===\nNo active jobs found."
	}
	lines := make([]string, 0, len(jobs)+1)
	lines = append(lines, fmt.Sprintf("=== ACTIVE JOBS (%d) ===", len(jobs)))
	for _, j := range jobs {
		line := fmt.Sprintf("- #%s %s", j.Number, j.Name)
		if j.Status != "" {
			line += " | Status: " + j.Status
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func teamSection(team []projectsysx.TeamMember, err error) string {
	if err != nil {
		return "=== TEAM ERROR ===\n" + err.Error()
	}
	if len(team) == 0 {
		return "=== TEAM ===\nNo team members found."
	}
	lines := make([]string, 0, len(team)+1)
	lines = append(lines, fmt.Sprintf("=== TEAM (%d) ===", len(team)))
	for _, m := range team {
		line := "- " + m.User.Name
		if m.User.Email != "" {
			line += " | " + m.User.Email
		}
		if m.Role != "" {
			line += " | " + m.Role
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func accountsSection(title string, accounts []projectsysx.Account, err error) string {
	if err != nil {
		return "=== " + title + " ERROR ===\n" + err.Error()
	}
	if len(accounts) == 0 {
		return "=== " + title + " ===\nNone found."
	}
	lines := make([]string, 0, len(accounts)+1)
	lines = append(lines, fmt.Sprintf("=== %s (%d) ===", title, len(accounts)))
	for _, a := range accounts {
		lines = append(lines, "- "+a.Name)
	}
	return strings.Join(lines, "\n")
}
