// Package paths resolves the directories projgen keeps its own settings in.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux the settings file lives at
// ~/.config/projgen/config.yaml; macOS and Windows use their platform
// equivalents.
//
//	paths.SettingsDir()  // <ConfigHome>/projgen/
//	paths.SettingsFile() // <ConfigHome>/projgen/config.yaml
//	paths.BackupDir()    // <DataHome>/projgen/backups/
package paths
