// Package pool
// Author: momentics <momentics@gmail.com>
//
// Object pooling for hioload-channels. Futures pool themselves per channel;
// this package pools the short-lived helpers around them, such as the
// notification channels used when a goroutine parks on a task.
package pool
