package models

// Language used when an election is created without one
const DefaultLanguage = "en"

// Election is one voting event graded on a scale of NumGrades mentions.
//
// Invariants (checked by Validate, not at construction):
//   - NumGrades is set and within (0, Settings.MaxNumGrades]
//   - Title is non-empty
//   - SelectLanguage is one of Settings.Languages
//   - FinishAt is strictly after the validation time
//   - StartAt <= FinishAt
//
// StartAt and FinishAt are seconds since the Unix epoch.
type Election struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Candidates       []string `json:"candidates"`
	OnInvitationOnly bool     `json:"on_invitation_only"`
	NumGrades        *int     `json:"num_grades"`
	StartAt          int64    `json:"start_at"`
	FinishAt         int64    `json:"finish_at"`
	// Used when emailing voters
	SelectLanguage string `json:"select_language"`
	// Restricted results are only visible once the election is finished
	RestrictResults bool `json:"restrict_results"`
}

// Vote is one ballot: a grade per candidate, in the election's candidate order.
// ID is assigned by the store's auto-increment key.
type Vote struct {
	ID                int64  `json:"id"`
	ElectionID        string `json:"election_id"`
	GradesByCandidate []int  `json:"grades_by_candidate"`
}

// Token is a single-use voting credential for one election.
// Flipping Used is left to the caller; nothing here enforces single use.
type Token struct {
	ID         string `json:"id"`
	ElectionID string `json:"election_id"`
	Used       bool   `json:"used"`
}

// Settings holds the process-wide limits elections are validated against.
// It is read-only once built.
type Settings struct {
	MaxNumGrades int
	Languages    []string
}

// Grades returns a pointer to n, for filling Election.NumGrades.
func Grades(n int) *int {
	return &n
}
