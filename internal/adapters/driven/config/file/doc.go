// Package file keeps user-editable state under ~/.semsearch: settings in
// config.toml and prompt templates in prompts/.
package file
