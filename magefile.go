//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the iie binary into ./bin.
func Build() error {
	mg.Deps(Test)
	fmt.Println("Building iie...")
	return sh.RunV("go", "build", "-o", filepath.Join("bin", binaryName()), "./cmd/iie")
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs iie into GOBIN.
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/iie")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll("bin")
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "iie.exe"
	}
	return "iie"
}
