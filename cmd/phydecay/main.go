// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// PhyDecay is a tool to measure phylogenetic branch support
// with likelihood decay indices.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phydecay/cmd/phydecay/boot"
	"github.com/js-arias/phydecay/cmd/phydecay/dist"
	"github.com/js-arias/phydecay/cmd/phydecay/run"
)

var app = &command.Command{
	Usage: "phydecay <command> [<argument>...]",
	Short: "a tool to measure branch support with decay indices",
}

func init() {
	app.Add(run.Command)
	app.Add(boot.Command)
	app.Add(dist.Command)
}

func main() {
	app.Main()
}
