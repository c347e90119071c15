// Package notify delivers reminder notifications to the local desktop agent.
//
// The agent listens on the loopback interface and accepts a JSON document
// {"id", "title", "body"} at /notify. Only one platform ships the agent, so
// ForPlatform picks the real client there and a disabled Noop elsewhere.
package notify
