// Package validator checks struct tags with go-playground/validator v10.
//
// Validate reports a field-to-message map and is used for wiring checks.
// Check returns ordered violations, which the mediator turns into validation
// findings for incoming requests.
package validator
