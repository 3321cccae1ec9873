// SPDX-License-Identifier: MPL-2.0

// Package platform holds cross-platform file naming rules.
package platform

import "strings"

// windowsReservedNames are device names Windows refuses as file names,
// with or without an extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name, ignoring case and everything
// after the first dot, is a Windows device name. "nul.py" and "Con.tar.gz"
// are both reserved.
func IsWindowsReservedName(name string) bool {
	stem, _, _ := strings.Cut(strings.ToUpper(name), ".")
	return windowsReservedNames[strings.TrimRight(stem, " ")]
}

// PortableEntryName reports whether name can be extracted on Windows, macOS
// and Linux alike: not reserved, free of characters Windows rejects, and not
// ending in a dot or space.
func PortableEntryName(name string) bool {
	if name == "" || IsWindowsReservedName(name) {
		return false
	}
	if strings.ContainsAny(name, `<>:"|?*\`) {
		return false
	}
	for _, r := range name {
		if r < 0x20 {
			return false
		}
	}
	last := name[len(name)-1]
	return last != '.' && last != ' '
}
