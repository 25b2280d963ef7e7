package domain

// Pixels holds the tracking identifiers; an empty string means unset.
type Pixels struct {
	Facebook string `json:"facebook"`
	Google   string `json:"google"`
	TikTok   string `json:"tiktok"`
}

// Any reports whether at least one pixel is configured.
func (p Pixels) Any() bool {
	return p.Facebook != "" || p.Google != "" || p.TikTok != ""
}

// Integrations configures outbound order sync.
type Integrations struct {
	GoogleSheetsURL string `json:"googleSheetsUrl" yaml:"googleSheetsUrl" validate:"omitempty,url"`
}

// DomainInfo is display metadata for the store's custom domain.
type DomainInfo struct {
	CustomDomain string `json:"customDomain" yaml:"customDomain"`
	Nameservers  string `json:"nameservers" yaml:"nameservers"`
}

// Settings is the singleton store configuration. It is always replaced as a whole.
type Settings struct {
	StoreName     string       `json:"storeName" yaml:"storeName" validate:"required"`
	Pixels        Pixels       `json:"pixels" yaml:"pixels"`
	Integrations  Integrations `json:"integrations" yaml:"integrations"`
	Domain        DomainInfo   `json:"domain" yaml:"domain"`
	CustomScripts string       `json:"customScripts" yaml:"customScripts"`
}
