package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/venari/internal/ats"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/prompts"
)

// companyCandidate is one LLM-generated discovery target
type companyCandidate struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Industry    string `json:"industry"`
	Size        string `json:"size"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

// companyCandidateList is the structured response of the candidate call
type companyCandidateList struct {
	Companies []companyCandidate `json:"companies"`
}

const companyCandidateSchema = `{
  "companies": [{"name": "string", "domain": "string", "industry": "string",
    "size": "string", "tier": "tier_1|tier_2|tier_3|startup|unknown", "description": "string"}]
}`

// CompanyFinderAgent discovers target companies matching the candidate
// profile and preferences, validates their career pages and detects ATS types.
type CompanyFinderAgent struct {
	BaseAgent
}

// NewCompanyFinderAgent creates the find_companies stage handler
func NewCompanyFinderAgent(deps Deps) *CompanyFinderAgent {
	return &CompanyFinderAgent{BaseAgent: NewBaseAgent(models.StepFindCompanies, deps)}
}

// Run generates candidates, validates career pages and builds Company records
func (a *CompanyFinderAgent) Run(ctx context.Context, state *models.PipelineState) error {
	start := a.LogStart()

	if state.Profile == nil || state.Preferences == nil {
		return models.NewFatalAgentError("profile and preferences must be parsed before finding companies")
	}

	candidates, err := a.generateCandidates(ctx, state)
	if err != nil {
		return err
	}

	var companies []models.Company
	for _, candidate := range candidates {
		company, err := a.validateAndBuild(ctx, candidate)
		if err != nil {
			a.RecordError(state, err, candidate.Name, "")
			continue
		}
		if company != nil {
			companies = append(companies, *company)
		}
	}

	if len(companies) == 0 {
		return models.NewFatalAgentError("no companies found with valid career pages")
	}

	if limit := state.Config.CompanyLimit; limit > 0 && len(companies) > limit {
		companies = companies[:limit]
	}

	state.Companies = companies

	a.deps.Logger.Info().Int("companies_found", len(companies)).Msg("Companies discovered")
	a.LogEnd(start)
	return nil
}

// generateCandidates produces discovery targets, either directly from the
// user's preferred companies or via the LLM with exclusions applied.
func (a *CompanyFinderAgent) generateCandidates(ctx context.Context, state *models.PipelineState) ([]companyCandidate, error) {
	prefs := state.Preferences
	profile := state.Profile

	// Preferred companies bypass LLM candidate generation entirely
	if len(prefs.PreferredCompanies) > 0 {
		candidates := make([]companyCandidate, 0, len(prefs.PreferredCompanies))
		for _, name := range prefs.PreferredCompanies {
			candidates = append(candidates, companyCandidate{
				Name:   name,
				Domain: strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".com",
			})
		}
		return candidates, nil
	}

	// The exclusion slot is the union of user exclusions and every company
	// attempted in earlier discovery iterations
	excluded := state.ExcludedCompanySet()
	excludedNames := make([]string, 0, len(excluded))
	for name := range excluded {
		excludedNames = append(excludedNames, name)
	}
	sort.Strings(excludedNames)

	locations := joinOr(prefs.PreferredLocations, firstNonEmpty(profile.Location, "Any"))
	targetTitles := joinOr(prefs.TargetTitles, firstNonEmpty(profile.CurrentTitle, "Any"))
	industries := joinOr(prefs.PreferredIndustries, joinOr(profile.Industries, "Any"))
	seniority := joinOr(prefs.TargetSeniority, firstNonEmpty(string(profile.SeniorityLevel), "Any"))

	prompt := fmt.Sprintf(prompts.CompanyFinderUser,
		profile.Name,
		firstNonEmpty(profile.CurrentTitle, "Not specified"),
		profile.YearsOfExperience,
		joinOr(profile.SkillNames(), "Not specified"),
		joinOr(profile.Industries, "Not specified"),
		joinOr(profile.TechStack, "Not specified"),
		targetTitles,
		seniority,
		locations,
		string(prefs.RemotePreference),
		industries,
		joinOr(prefs.OrgTypes, "any"),
		joinOr(prefs.CompanySizes, "Any"),
		joinOr(excludedNames, "None"),
		joinOr(prefs.PreferredCompanies, "None"),
		firstNonEmpty(prefs.Currency, "USD"),
	)

	var result companyCandidateList
	err := a.CallLLM(ctx, state, interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "system", Content: prompts.CompanyFinderSystem},
			{Role: "user", Content: prompt},
		},
		Model:  a.deps.LLM.SmartModel(),
		Schema: companyCandidateSchema,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Companies, nil
}

// validateAndBuild confirms a candidate has a reachable career page and
// detects its ATS type. Returns an error when no career page URL is found;
// the caller records it as non-fatal and skips the candidate.
func (a *CompanyFinderAgent) validateAndBuild(ctx context.Context, candidate companyCandidate) (*models.Company, error) {
	careerURL, err := a.findCareerURL(ctx, candidate.Name)
	if err != nil {
		return nil, err
	}
	if careerURL == "" {
		a.deps.Logger.Warn().Str("company", candidate.Name).Msg("Career page not found")
		return nil, fmt.Errorf("no career page found for %s", candidate.Name)
	}

	atsType, strategy := ats.Detect(careerURL, a.deps.ATSClients)

	return &models.Company{
		ID:     common.NewID(),
		Name:   candidate.Name,
		Domain: candidate.Domain,
		CareerPage: models.CareerPage{
			URL:            careerURL,
			ATSType:        atsType,
			ScrapeStrategy: strategy,
		},
		Industry:    candidate.Industry,
		Size:        candidate.Size,
		Description: candidate.Description,
		Tier:        models.ParseCompanyTier(candidate.Tier),
	}, nil
}

// findCareerURL resolves a company's career page: seed list first, then search
func (a *CompanyFinderAgent) findCareerURL(ctx context.Context, companyName string) (string, error) {
	if seeded := lookupSeedBoard(companyName); seeded != "" {
		a.deps.Logger.Debug().Str("company", companyName).Str("url", seeded).Msg("Seed board hit")
		return seeded, nil
	}
	return a.deps.Search.FindCareerPage(ctx, companyName)
}

// firstNonEmpty returns the first non-empty string
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
