//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL shaders into SPIR-V under the assets tree.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	if _, err := executeCmd("glslc", withArgs("shaders/cube.vert", "-o", "assets/shaders/cube.vert.spv"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("shaders/cube.frag", "-o", "assets/shaders/cube.frag.spv"), withStream()); err != nil {
		return err
	}
	return nil
}
