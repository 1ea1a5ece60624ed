package models

// SkillRequirement is one skill in a job posting, with its importance
// weight. Required skills carry a heavier penalty when missing.
type SkillRequirement struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Required bool    `json:"required"`
}

// JobRequirementProfile is the target posting a resume is scored
// against. Supplied by the application-record collaborator and treated
// as read-only input.
type JobRequirementProfile struct {
	JobTitle           string             `json:"job_title"`
	Skills             []SkillRequirement `json:"skills"`
	MinExperienceYears float64            `json:"min_experience_years"`
	MinEducation       string             `json:"min_education"`
}
