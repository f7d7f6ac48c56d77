//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target when mage runs without arguments.
var Default = Check

// goV runs the go tool, streaming its output when mage runs with -v.
var goV = sh.RunCmd("go")

type Test mg.Namespace

// Unit runs every package test with the race detector.
func (Test) Unit() error {
	return goV("test", "-race", "-count=1", "./...")
}

// Cover writes coverage.out and prints the module total.
func (Test) Cover() error {
	if err := goV("test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	out, err := sh.Output("go", "tool", "cover", "-func=coverage.out")
	if err != nil {
		return fmt.Errorf("summarizing coverage: %w", err)
	}
	fmt.Println(out)
	return nil
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return goV("mod", "tidy")
}

// Check vets and tests the module.
func Check() {
	mg.SerialDeps(Vet, Test.Unit)
}
