// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/hashicorp/go-arkiv/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main start the arkiv cli
func main() {
	cmd.Run(version, commit, date)
}
