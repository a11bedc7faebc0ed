// Package messaging carries the rabbitmq plumbing shared by tracking
// and the preset sync between instances.
package messaging

type ChangeTopic string

// PresetsChanged tells other instances to reload saved presets.
const PresetsChanged ChangeTopic = "presets_changed"
