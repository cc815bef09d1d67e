// Package types provides the profile records exchanged with the external profile API
// and served to the dashboard.
package types

import "time"

// ProfileStatus is the lifecycle state of a profile.
type ProfileStatus string

// Profile lifecycle states.
const (
	StatusDraft      ProfileStatus = "draft"
	StatusInProgress ProfileStatus = "in_progress"
	StatusCompleted  ProfileStatus = "completed"
)

// Contact center skill categories.
const (
	CategoryCommunication   = "Communication"
	CategoryProblemSolving  = "Problem Solving"
	CategoryCustomerService = "Customer Service"
)

// Contact center proficiency levels, strongest first.
const (
	ProficiencyExpert       = "Expert"
	ProficiencyAdvanced     = "Advanced"
	ProficiencyIntermediate = "Intermediate"
	ProficiencyBasic        = "Basic"
	ProficiencyNovice       = "Novice"
)

// EndDatePresent marks an experience entry that is still ongoing.
const EndDatePresent = "present"

// ExternalProfile is the profile as returned by the external profile API.
// Any block may be absent; the four blocks the dashboard depends on are pointers
// (or an empty string for Status) so absence is observable.
type ExternalProfile struct {
	UserID              string               `json:"userId"`
	Status              ProfileStatus        `json:"status,omitempty" validate:"omitempty,oneof=draft in_progress completed"`
	CompletionSteps     *CompletionSteps     `json:"completionSteps,omitempty"`
	Availability        *Availability        `json:"availability,omitempty"`
	PersonalInfo        *PersonalInfo        `json:"personalInfo,omitempty"`
	ProfessionalSummary *ProfessionalSummary `json:"professionalSummary,omitempty"`
	Skills              *Skills              `json:"skills,omitempty"`
	Achievements        []Achievement        `json:"achievements,omitempty" validate:"dive"`
	Experience          []Experience         `json:"experience,omitempty" validate:"dive"`
	Performance         *Performance         `json:"performance,omitempty"`
	LastUpdated         *time.Time           `json:"lastUpdated,omitempty"`
	CreatedAt           *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time           `json:"updatedAt,omitempty"`
}

// ViewProfile is the dashboard projection of a profile. Performance,
// CompletionSteps, Status and Skills.ContactCenter are always populated.
type ViewProfile struct {
	UserID              string               `json:"userId"`
	Status              ProfileStatus        `json:"status"`
	CompletionSteps     CompletionSteps      `json:"completionSteps"`
	Availability        *Availability        `json:"availability,omitempty"`
	PersonalInfo        *PersonalInfo        `json:"personalInfo,omitempty"`
	ProfessionalSummary *ProfessionalSummary `json:"professionalSummary,omitempty"`
	Skills              ViewSkills           `json:"skills"`
	Achievements        []Achievement        `json:"achievements,omitempty"`
	Experience          []Experience         `json:"experience,omitempty"`
	Performance         Performance          `json:"performance"`
	LastUpdated         *time.Time           `json:"lastUpdated,omitempty"`
	CreatedAt           *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time           `json:"updatedAt,omitempty"`
}

// CompletionSteps records which onboarding steps are done.
type CompletionSteps struct {
	BasicInfo  bool `json:"basicInfo"`
	Experience bool `json:"experience"`
	Skills     bool `json:"skills"`
	Languages  bool `json:"languages"`
	Assessment bool `json:"assessment"`
}

// Step is a single named completion step.
type Step struct {
	Name string
	Done bool
}

// Steps lists the completion steps in canonical order.
func (c CompletionSteps) Steps() []Step {
	return []Step{
		{Name: "basicInfo", Done: c.BasicInfo},
		{Name: "experience", Done: c.Experience},
		{Name: "skills", Done: c.Skills},
		{Name: "languages", Done: c.Languages},
		{Name: "assessment", Done: c.Assessment},
	}
}

// Availability describes when the profile owner can work.
type Availability struct {
	Days        []string   `json:"days,omitempty"`
	Hours       *TimeRange `json:"hours,omitempty"`
	TimeZones   []string   `json:"timeZones,omitempty"`
	Flexibility []string   `json:"flexibility,omitempty"`
}

// TimeRange is a start/end pair of wall-clock times such as "09:00".
type TimeRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// PersonalInfo holds contact details and spoken languages.
type PersonalInfo struct {
	Name      string     `json:"name,omitempty"`
	Location  string     `json:"location,omitempty"`
	Email     string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string     `json:"phone,omitempty"`
	Languages []Language `json:"languages,omitempty" validate:"dive"`
}

// Language is a spoken language with an optional assessment.
type Language struct {
	Language          string                     `json:"language" validate:"required"`
	Proficiency       string                     `json:"proficiency" validate:"required"`
	AssessmentResults *LanguageAssessmentResults `json:"assessmentResults,omitempty"`
}

// LanguageAssessmentResults holds the sub-scores of a language assessment.
type LanguageAssessmentResults struct {
	Completeness AssessmentScore        `json:"completeness"`
	Fluency      AssessmentScore        `json:"fluency"`
	Proficiency  AssessmentScore        `json:"proficiency"`
	Overall      OverallAssessmentScore `json:"overall"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty"`
}

// AssessmentScore is a 0-100 score with free-text feedback.
type AssessmentScore struct {
	Score    float64 `json:"score" validate:"gte=0,lte=100"`
	Feedback string  `json:"feedback,omitempty"`
}

// OverallAssessmentScore is the summary score of a language assessment.
type OverallAssessmentScore struct {
	Score               float64 `json:"score" validate:"gte=0,lte=100"`
	Strengths           string  `json:"strengths,omitempty"`
	AreasForImprovement string  `json:"areasForImprovement,omitempty"`
}

// ProfessionalSummary is the headline career information.
type ProfessionalSummary struct {
	YearsOfExperience  string   `json:"yearsOfExperience,omitempty"`
	CurrentRole        string   `json:"currentRole,omitempty"`
	Industries         []string `json:"industries,omitempty"`
	KeyExpertise       []string `json:"keyExpertise,omitempty"`
	NotableCompanies   []string `json:"notableCompanies,omitempty"`
	ProfileDescription string   `json:"profileDescription,omitempty"`
}

// Skills groups skills by family.
type Skills struct {
	Technical     []Skill              `json:"technical,omitempty" validate:"dive"`
	Professional  []Skill              `json:"professional,omitempty" validate:"dive"`
	Soft          []Skill              `json:"soft,omitempty" validate:"dive"`
	ContactCenter []ContactCenterSkill `json:"contactCenter,omitempty" validate:"dive"`
}

// ViewSkills is Skills with ContactCenter always serialized, as an empty list when there are none.
type ViewSkills struct {
	Technical     []Skill              `json:"technical,omitempty"`
	Professional  []Skill              `json:"professional,omitempty"`
	Soft          []Skill              `json:"soft,omitempty"`
	ContactCenter []ContactCenterSkill `json:"contactCenter"`
}

// Skill is a named skill with a numeric level.
type Skill struct {
	Skill   string  `json:"skill" validate:"required"`
	Level   float64 `json:"level" validate:"gte=0"`
	Details string  `json:"details,omitempty"`
}

// ContactCenterSkill is a contact center competency, optionally assessed.
type ContactCenterSkill struct {
	Skill             string                  `json:"skill" validate:"required"`
	Category          string                  `json:"category" validate:"required,oneof='Communication' 'Problem Solving' 'Customer Service'"`
	Proficiency       string                  `json:"proficiency" validate:"required,oneof=Expert Advanced Intermediate Basic Novice"`
	AssessmentResults *SkillAssessmentResults `json:"assessmentResults,omitempty"`
}

// SkillAssessmentResults is the outcome of a contact center skill assessment.
type SkillAssessmentResults struct {
	Score        float64    `json:"score" validate:"gte=0,lte=100"`
	Strengths    []string   `json:"strengths,omitempty"`
	Improvements []string   `json:"improvements,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	Tips         []string   `json:"tips,omitempty"`
	KeyMetrics   KeyMetrics `json:"keyMetrics"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// KeyMetrics are the 0-100 sub-scores that feed the REPS score.
type KeyMetrics struct {
	Professionalism float64 `json:"professionalism" validate:"gte=0,lte=100"`
	Effectiveness   float64 `json:"effectiveness" validate:"gte=0,lte=100"`
	CustomerFocus   float64 `json:"customerFocus" validate:"gte=0,lte=100"`
}

// Achievement is a notable accomplishment.
type Achievement struct {
	Description string   `json:"description" validate:"required"`
	Impact      string   `json:"impact,omitempty"`
	Context     string   `json:"context,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

// Experience is a past or current position. StartDate and EndDate are kept as
// the strings the API sent; EndDate may be EndDatePresent.
type Experience struct {
	Title            string   `json:"title" validate:"required"`
	Company          string   `json:"company" validate:"required"`
	StartDate        string   `json:"startDate" validate:"required,profiledate"`
	EndDate          string   `json:"endDate,omitempty" validate:"omitempty,enddate"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Achievements     []string `json:"achievements,omitempty"`
}

// IsCurrent reports whether the position is ongoing.
func (e Experience) IsCurrent() bool {
	return e.EndDate == EndDatePresent
}

// Performance is the legacy 0-100 performance block.
type Performance struct {
	CustomerSatisfaction float64 `json:"customerSatisfaction"`
	TaskCompletionRate   float64 `json:"taskCompletionRate"`
	OnTimeDelivery       float64 `json:"onTimeDelivery"`
}
