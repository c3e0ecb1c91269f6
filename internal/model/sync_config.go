// internal/model/sync_config.go
package model

import "time"

// SyncConfig is the administrator-managed module configuration.
// The resync* fields are transient and only drive a bulk run.
type SyncConfig struct {
	APIKey          string `json:"mailchimpApiKey"`
	AudienceID      string `json:"mailchimpAudienceId"`
	CreateIfMissing bool   `json:"createIfMissing"`

	ResyncEmail        string `json:"resyncEmail" validate:"omitempty,email"`
	ResyncFrom         int64  `json:"resyncFrom" validate:"gte=0"`
	ResyncTo           int64  `json:"resyncTo" validate:"omitempty,gtefield=ResyncFrom"`
	ResyncDryRun       bool   `json:"resyncDryRun"`
	ResyncUnsyncedOnly bool   `json:"resyncUnsyncedOnly"`
	ResyncRun          bool   `json:"resyncRun"`
}

// ResyncFilter extracts the bulk run parameters. Zero epochs mean "no bound".
func (c SyncConfig) ResyncFilter() ResyncFilter {
	f := ResyncFilter{
		Email:        c.ResyncEmail,
		UnsyncedOnly: c.ResyncUnsyncedOnly,
		DryRun:       c.ResyncDryRun,
	}
	if c.ResyncFrom > 0 {
		t := time.Unix(c.ResyncFrom, 0).UTC()
		f.From = &t
	}
	if c.ResyncTo > 0 {
		t := time.Unix(c.ResyncTo, 0).UTC()
		f.To = &t
	}
	return f
}

// Masked returns a copy safe to show in the admin UI.
func (c SyncConfig) Masked() SyncConfig {
	if n := len(c.APIKey); n > 4 {
		c.APIKey = "****" + c.APIKey[n-4:]
	} else if n > 0 {
		c.APIKey = "****"
	}
	return c
}
