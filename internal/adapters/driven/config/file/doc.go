// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: editable prompt templates with embedded defaults
//   - Watcher: reloads the ConfigStore when config.toml changes on disk
package file
