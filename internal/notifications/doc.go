// Package notifications sends ntfy push notifications for job lifecycle
// events. With no topic configured every call is a no-op, so callers never
// need to guard notification sends.
package notifications
