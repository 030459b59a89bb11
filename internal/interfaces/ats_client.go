package interfaces

import (
	"context"
	"encoding/json"

	"github.com/ternarybob/venari/internal/models"
)

// ATSClient is one applicant-tracking-system scraping strategy
type ATSClient interface {
	// Type returns the ATS family this client serves
	Type() models.ATSType

	// Detect reports whether the URL matches this ATS family's hostname pattern
	Detect(careerURL string) bool

	// FetchJobs returns the raw job records from the ATS public API.
	// Each record is one job's JSON object.
	FetchJobs(ctx context.Context, company models.Company) ([]json.RawMessage, error)
}
