package model

// CareerProfile is the questionnaire answered before a consultation.
// It lives only for the duration of a request.
type CareerProfile struct {
	AcademicStatus string `json:"academicStatus"`
	Backlogs       string `json:"backlogs"`
	TopSkills      string `json:"topSkills"`
	ProjectType    string `json:"projectType,omitempty"`
	DreamCompany   string `json:"dreamCompany"`
	Priority       string `json:"priority,omitempty"`
}

// DomainSuggestion is one career domain proposed by a consultation.
type DomainSuggestion struct {
	Domain   string `json:"domain" validate:"required"`
	Analysis string `json:"analysis" validate:"required"`
}
