package store

const (
	// KeyWebhooks holds the JSON array of saved webhooks.
	KeyWebhooks = "discohook_webhooks"
	// KeyBackups holds the JSON array of message backups.
	KeyBackups = "discohook_backups"
	// KeySettings holds the editor settings object.
	KeySettings = "discohook_settings"
)

// Keys namespaces the storage keys so several workspaces can share one backend.
type Keys struct {
	Namespace string
}

func (k Keys) key(base string) string {
	if k.Namespace == "" {
		return base
	}
	return k.Namespace + ":" + base
}

// Webhooks returns the key for the webhook list
func (k Keys) Webhooks() string { return k.key(KeyWebhooks) }

// Backups returns the key for the backup list
func (k Keys) Backups() string { return k.key(KeyBackups) }

// Settings returns the key for the settings document
func (k Keys) Settings() string { return k.key(KeySettings) }

// All returns every key owned by the workspace.
func (k Keys) All() []string {
	return []string{k.Webhooks(), k.Backups(), k.Settings()}
}
