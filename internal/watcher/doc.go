// Package watcher uploads images dropped into a watched directory.
package watcher
