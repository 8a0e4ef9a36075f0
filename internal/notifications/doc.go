// Package notifications delivers settings store alerts via ntfy.
//
// Service publishes enumerated events to the topic configured in
// config.toml and degrades to a no-op when no topic is set. Observer adapts
// a Service to the settings store lifecycle so a quarantined settings file or
// a failed save reaches the operator without polling the logs.
package notifications
