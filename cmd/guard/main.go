// Package main is the entry point for the Seriously AI request guard.
//
//	@title						Seriously AI Guard
//	@version					1.0
//	@description				Request protection service: route classification, session gating, credit ledger checks, and plan entitlements.
//
//	@contact.name				Seriously AI Support
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
package main

func main() {
	Execute()
}
