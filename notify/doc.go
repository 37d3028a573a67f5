// Package notify implements the notification service: actors SUBSCRIBE to
// named events and receive a NOTIFICATION for every BROADCAST of them.
package notify
