//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the CLI and runs a one-page title search against the
// configured catalog, e.g. mage search gatsby.
func Search(title string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "search", title)
}

// Favorites builds the CLI and lists saved works.
func Favorites() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "favorites", "list")
}
