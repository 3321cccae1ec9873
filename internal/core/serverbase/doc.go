// SPDX-License-Identifier: MPL-2.0

// Package serverbase holds the lifecycle state machine shared by long-running
// servers. A server embeds Base, drives it through Begin/Mark transitions
// from its own Start and Stop methods, and runs its background loops via Go
// so that shutdown can wait for them.
package serverbase
