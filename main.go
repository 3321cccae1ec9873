// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/chatpack/chatpack/cmd/chatpack"

func main() {
	cmd.Execute()
}
