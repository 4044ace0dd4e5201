package ops

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hpungsan/howto/internal/db"
	"github.com/hpungsan/howto/internal/errors"
)

// Setting keys persisted in the settings table.
const (
	SettingLanguage = "language"
	SettingDarkMode = "dark_mode"
)

var knownSettings = map[string]bool{
	SettingLanguage: true,
	SettingDarkMode: true,
}

// GetSettings returns every stored setting.
// A storage failure yields an empty map.
func GetSettings(ctx context.Context, database *sql.DB) map[string]string {
	settings, err := db.ListSettings(ctx, database)
	if err != nil {
		logStorage("get_settings", err)
		return map[string]string{}
	}
	return settings
}

// PutSetting stores one setting. Unknown keys are rejected; storage
// failures are logged and dropped.
func PutSetting(ctx context.Context, database *sql.DB, key, value string) error {
	if !knownSettings[key] {
		return errors.NewInvalidRequest(fmt.Sprintf("unknown setting: %s", key))
	}
	if err := db.SetSetting(ctx, database, key, value); err != nil {
		logStorage("put_setting", err, slog.String("key", key))
	}
	return nil
}
