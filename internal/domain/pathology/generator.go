package pathology

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

var (
	reportTypes = []string{"Biopsy", "Blood Test", "Tissue Analysis", "Cytology"}
	statuses    = []string{"Cancer detected", "Abnormal cells present", "Malignancy suspected", "Tumor identified"}
	severities  = []Severity{SeverityLow, SeverityMedium, SeverityHigh}
	doctors     = []string{"Dr. Tanaka", "Dr. Suzuki", "Dr. Watanabe", "Dr. Sato"}
	hospitals   = []string{"Tokyo General Hospital", "Yokohama Medical Center", "Osaka University Hospital", "Kyoto Medical Center"}

	cellAbnormalities = []string{"Detected", "Not detected"}
	tissueDamages     = []string{"Minimal", "Moderate", "Severe"}
	tumorMarkers      = []string{"Elevated", "Normal", "Inconclusive"}
)

// NewRand returns a generator seeded from the patient identifier. Two
// generators built from the same identifier produce the same sequence.
func NewRand(patientID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(patientID))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// ValidatePatientID rejects blank identifiers and identifiers carrying
// control characters. Ids end up in log lines and mail headers.
func ValidatePatientID(patientID string) error {
	if strings.TrimSpace(patientID) == "" {
		return fmt.Errorf("patient id is required: %w", apperr.ErrInvalidInput)
	}
	if strings.ContainsFunc(patientID, unicode.IsControl) {
		return fmt.Errorf("patient id contains control characters: %w", apperr.ErrInvalidInput)
	}
	return nil
}

// Generate fabricates a report for patientID. Every randomized field is drawn
// from rng in a fixed order, so a generator from NewRand(patientID) always
// yields the same report apart from the timestamp.
func Generate(patientID string, rng *rand.Rand, now time.Time) (*Report, error) {
	if err := ValidatePatientID(patientID); err != nil {
		return nil, err
	}

	status := statuses[0]
	if !strings.Contains(patientID, "1") {
		status = pick(rng, statuses)
	}

	severity := SeverityHigh
	if !strings.ContainsAny(patientID, "12") {
		severity = pick(rng, severities)
	}

	r := &Report{
		PatientID:        patientID,
		ReportID:         fmt.Sprintf("PTH-%d", 10000+rng.IntN(90000)),
		ReportType:       pick(rng, reportTypes),
		Status:           status,
		Severity:         severity,
		Doctor:           pick(rng, doctors),
		Hospital:         pick(rng, hospitals),
		Timestamp:        now,
		FollowUpRequired: severity.RequiresFollowUp(),
	}
	r.Findings = Findings{
		Description: fmt.Sprintf("Patient %s shows signs of %s. Further examination is advised.",
			patientID, strings.ToLower(status)),
		Details: FindingDetails{
			CellAbnormality: pick(rng, cellAbnormalities),
			TissueDamage:    pick(rng, tissueDamages),
			TumorMarkers:    pick(rng, tumorMarkers),
		},
	}
	return r, nil
}

// Source serves reports for patients. It holds no state besides the clock.
type Source struct {
	now func() time.Time
}

// NewSource creates a Source. A nil clock defaults to time.Now in UTC.
func NewSource(now func() time.Time) *Source {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Source{now: now}
}

// Get returns the report for patientID.
func (s *Source) Get(_ context.Context, patientID string) (*Report, error) {
	return Generate(patientID, NewRand(patientID), s.now())
}
