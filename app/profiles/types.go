package profiles

// Profile is one user's declared preferences, loaded from a YAML file in the
// profiles directory. The file name (minus extension) is the profile name.
type Profile struct {
	Name        string      `yaml:"-"`
	Preferences Preferences `yaml:"preferences"`
	Queries     []Query     `yaml:"queries"`
}

// Preferences mirrors the persisted preference entity.
type Preferences struct {
	JobTypes           []string `yaml:"job_types"`
	IncludeKeywords    []string `yaml:"include_keywords"`
	ExcludeKeywords    []string `yaml:"exclude_keywords"`
	ExperienceLevels   []string `yaml:"experience_levels"`
	Countries          []string `yaml:"countries"`
	Cities             []string `yaml:"cities"`
	PreferredCompanies []string `yaml:"preferred_companies"`
	ExcludedCompanies  []string `yaml:"excluded_companies"`
	RemoteOnly         bool     `yaml:"remote_only"`
	EasyApplyOnly      bool     `yaml:"easy_apply_only"`
	ExcludeSenior      bool     `yaml:"exclude_senior"`
}

// Query is one search the scrape collector runs on this profile's behalf.
type Query struct {
	Term     string `yaml:"term"`
	Location string `yaml:"location"`
	Country  string `yaml:"country"`
}
