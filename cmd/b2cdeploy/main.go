// Package main provides the b2cdeploy CLI for building and publishing
// Azure AD B2C custom policies.
package main

import "os"

func main() {
	os.Exit(Execute())
}
