// SPDX-License-Identifier: MPL-2.0

// Package testutil holds small helpers shared by the test suites: fixture
// writers, environment overrides, a controllable clock and server cleanup.
package testutil
