package domain

// FormSubmission is the section-structured input a beneficiary fills in.
// Only Basic is required; the other sections are nil when the step was skipped.
type FormSubmission struct {
	Basic         BasicSection          `yaml:"basic" json:"basic"`
	Household     *HouseholdSection     `yaml:"household,omitempty" json:"household,omitempty"`
	Health        *HealthSection        `yaml:"health,omitempty" json:"health,omitempty"`
	Employment    *EmploymentSection    `yaml:"employment,omitempty" json:"employment,omitempty"`
	Documentation *DocumentationSection `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Preferences   *PreferencesSection   `yaml:"preferences,omitempty" json:"preferences,omitempty"`
}

// BasicSection holds the identity fields every submission carries.
type BasicSection struct {
	Age                string `yaml:"age" json:"age"`
	Gender             string `yaml:"gender" json:"gender"`
	CountryOfResidence string `yaml:"country_of_residence" json:"countryOfResidence"`
	CountryOfOrigin    string `yaml:"country_of_origin,omitempty" json:"countryOfOrigin,omitempty"`
	Region             string `yaml:"region,omitempty" json:"region,omitempty"`
}

// HouseholdSection holds household composition and income.
type HouseholdSection struct {
	HouseholdSize      string `yaml:"household_size" json:"householdSize"`
	NumberOfDependents string `yaml:"number_of_dependents" json:"numberOfDependents"`
	TypeOfDependents   string `yaml:"type_of_dependents,omitempty" json:"typeOfDependents,omitempty"`
	MonthlyIncome      string `yaml:"monthly_income,omitempty" json:"monthlyIncome,omitempty"`
}

// HealthSection holds disability and chronic illness status codes.
type HealthSection struct {
	DisabilityStatus     string `yaml:"disability_status,omitempty" json:"disabilityStatus,omitempty"`
	ChronicIllnessStatus string `yaml:"chronic_illness_status,omitempty" json:"chronicIllnessStatus,omitempty"`
}

// EmploymentSection holds employment details.
type EmploymentSection struct {
	EmploymentStatus     string `yaml:"employment_status,omitempty" json:"employmentStatus,omitempty"`
	EmploymentSector     string `yaml:"employment_sector,omitempty" json:"employmentSector,omitempty"`
	SocialSecurityNumber string `yaml:"social_security_number,omitempty" json:"socialSecurityNumber,omitempty"`
}

// DocumentationSection holds the documents a beneficiary can present.
type DocumentationSection struct {
	HasValidID          *bool `yaml:"has_valid_id,omitempty" json:"hasValidID,omitempty"`
	HasProofOfResidence *bool `yaml:"has_proof_of_residence,omitempty" json:"hasProofOfResidence,omitempty"`
	HasIncomeDocuments  *bool `yaml:"has_income_documents,omitempty" json:"hasIncomeDocuments,omitempty"`
}

// PreferencesSection narrows the programs a beneficiary wants to see.
type PreferencesSection struct {
	Region     string   `yaml:"region,omitempty" json:"region,omitempty"`
	Categories []string `yaml:"categories,omitempty" json:"categories,omitempty"`
}
