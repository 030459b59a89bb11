package agents

import (
	"fmt"
	"strings"

	"github.com/ternarybob/venari/internal/models"
)

// seedBoard is a company with a verified public ATS board
type seedBoard struct {
	Domain string
	ATS    models.ATSType
	Slug   string
}

// seedBoards maps lowercased company names to verified ATS boards.
// The seed list lets discovery skip web search for well-known boards.
var seedBoards = map[string]seedBoard{
	// Greenhouse
	"stripe":     {"stripe.com", models.ATSGreenhouse, "stripe"},
	"coinbase":   {"coinbase.com", models.ATSGreenhouse, "coinbase"},
	"figma":      {"figma.com", models.ATSGreenhouse, "figma"},
	"postman":    {"postman.com", models.ATSGreenhouse, "postman"},
	"datadog":    {"datadoghq.com", models.ATSGreenhouse, "datadog"},
	"cloudflare": {"cloudflare.com", models.ATSGreenhouse, "cloudflare"},
	"mongodb":    {"mongodb.com", models.ATSGreenhouse, "mongodb"},
	"gitlab":     {"gitlab.com", models.ATSGreenhouse, "gitlab"},
	"hashicorp":  {"hashicorp.com", models.ATSGreenhouse, "hashicorp"},
	"databricks": {"databricks.com", models.ATSGreenhouse, "databricks"},
	"doordash":   {"doordash.com", models.ATSGreenhouse, "doordash"},
	"plaid":      {"plaid.com", models.ATSGreenhouse, "plaid"},
	"brex":       {"brex.com", models.ATSGreenhouse, "brex"},
	"gusto":      {"gusto.com", models.ATSGreenhouse, "gusto"},
	"affirm":     {"affirm.com", models.ATSGreenhouse, "affirm"},

	// Lever
	"netflix":  {"netflix.com", models.ATSLever, "netflix"},
	"deel":     {"deel.com", models.ATSLever, "deel"},
	"miro":     {"miro.com", models.ATSLever, "miro"},
	"coursera": {"coursera.org", models.ATSLever, "coursera"},
	"anduril":  {"anduril.com", models.ATSLever, "anduril"},
	"navan":    {"navan.com", models.ATSLever, "tripactions"},
	"dream11":  {"dream11.com", models.ATSLever, "dreamsports"},

	// Ashby
	"notion":      {"notion.so", models.ATSAshby, "notion"},
	"ramp":        {"ramp.com", models.ATSAshby, "ramp"},
	"linear":      {"linear.app", models.ATSAshby, "linear"},
	"replit":      {"replit.com", models.ATSAshby, "replit"},
	"eleven labs": {"elevenlabs.io", models.ATSAshby, "elevenlabs"},
	"watershed":   {"watershed.com", models.ATSAshby, "watershed"},
}

// boardURLTemplates renders a seed board into its public board URL
var boardURLTemplates = map[models.ATSType]string{
	models.ATSGreenhouse: "https://boards.greenhouse.io/%s",
	models.ATSLever:      "https://jobs.lever.co/%s",
	models.ATSAshby:      "https://jobs.ashbyhq.com/%s",
}

// lookupSeedBoard returns the board URL for a well-known company, or ""
func lookupSeedBoard(companyName string) string {
	seed, ok := seedBoards[strings.ToLower(strings.TrimSpace(companyName))]
	if !ok {
		return ""
	}
	template, ok := boardURLTemplates[seed.ATS]
	if !ok {
		return ""
	}
	return fmt.Sprintf(template, seed.Slug)
}
