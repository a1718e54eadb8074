package settings

// UpdateSettingsPayload is the request body for updating settings. Every field
// is optional; only provided fields are persisted.
type UpdateSettingsPayload struct {
	DelugeHost     *string `json:"deluge_host,omitempty"`
	DelugePort     *string `json:"deluge_port,omitempty"`
	DelugePassword *string `json:"deluge_password,omitempty"`
	DelugeURL      *string `json:"deluge_url,omitempty" validate:"omitempty,url"`
	DelugeLabel    *string `json:"deluge_label,omitempty"`
	IndexerURL     *string `json:"indexer_url,omitempty" validate:"omitempty,url"`
	IndexerAPIKey  *string `json:"indexer_api_key,omitempty"`
	BookshelfURL   *string `json:"abs_base_url,omitempty" validate:"omitempty,url"`
	BookshelfKey   *string `json:"abs_api_key,omitempty"`
}

func (p *UpdateSettingsPayload) toMap() map[string]*string {
	return map[string]*string{
		KeyDelugeHost:     p.DelugeHost,
		KeyDelugePort:     p.DelugePort,
		KeyDelugePassword: p.DelugePassword,
		KeyDelugeURL:      p.DelugeURL,
		KeyDelugeLabel:    p.DelugeLabel,
		KeyIndexerURL:     p.IndexerURL,
		KeyIndexerAPIKey:  p.IndexerAPIKey,
		KeyBookshelfURL:   p.BookshelfURL,
		KeyBookshelfKey:   p.BookshelfKey,
	}
}
