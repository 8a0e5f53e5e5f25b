//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Verify runs go vet across the module, the closest thing this build has
// to the teacher's shader-compile step now that there's no offline asset
// pipeline to invoke ahead of a run.
func (Build) Verify() error {
	fmt.Println("go vet ./...")
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
