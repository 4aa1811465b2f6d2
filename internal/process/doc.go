// Package process isolates external renderer processes so a cancelled or
// timed-out build can terminate them together with any children they spawn.
package process
