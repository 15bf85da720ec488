// internal/models/trialrecord.go
package models

// TrialRecord is the flattened view of one clinical-trial row that the
// record filtering layer evaluates criteria against. Values are kept as
// strings; numeric and date fields are parsed per operator semantics.
type TrialRecord struct {
	ID                    string `json:"id"`
	TrialID               string `json:"trialId"`
	ProtocolTitle         string `json:"protocolTitle"`
	Phase                 string `json:"phase"`
	Status                string `json:"status"`
	Sponsor               string `json:"sponsor"`
	Country               string `json:"country"`
	TherapeuticArea       string `json:"therapeuticArea"`
	EnrollmentCount       string `json:"enrollmentCount"`
	StartDate             string `json:"startDate"`
	CompletionDate        string `json:"completionDate"`
	InclusionCriteria     string `json:"inclusionCriteria"`
	ExclusionCriteria     string `json:"exclusionCriteria"`
	Summary               string `json:"summary"`
	IsRandomized          string `json:"isRandomized"`
	HasAdverseEvents      string `json:"hasAdverseEvents"`
	PrincipalInvestigator string `json:"principalInvestigator"`
}

// AsMap returns the record keyed by field catalog ids, for the in-memory
// evaluator.
func (r TrialRecord) AsMap() map[string]string {
	return map[string]string{
		"trial_id":               r.TrialID,
		"protocol_title":         r.ProtocolTitle,
		"trial_phase":            r.Phase,
		"status":                 r.Status,
		"sponsor":                r.Sponsor,
		"country":                r.Country,
		"therapeutic_area":       r.TherapeuticArea,
		"enrollment_count":       r.EnrollmentCount,
		"start_date":             r.StartDate,
		"completion_date":        r.CompletionDate,
		"inclusion_criteria":     r.InclusionCriteria,
		"exclusion_criteria":     r.ExclusionCriteria,
		"summary":                r.Summary,
		"is_randomized":          r.IsRandomized,
		"has_adverse_events":     r.HasAdverseEvents,
		"principal_investigator": r.PrincipalInvestigator,
	}
}
