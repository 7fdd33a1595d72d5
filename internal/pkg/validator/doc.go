// Package validator checks request structs against `validate` struct tags.
//
// Callers depend on the Validator interface. The go-playground/validator v10
// implementation registers the rules the seller onboarding flow needs
// (mobile, otpcode, pincode, cityname, password) with English messages and
// reports failures keyed by snake_case field name.
package validator
