// Package sentinel defines Error, a string type for declaring sentinel errors
// as constants.
//
// Values created with errors.New must live in package variables, which any
// importer can overwrite. An Error can be declared const instead, and because
// it is a comparable value type, errors.Is matches it anywhere in a wrapped
// chain.
package sentinel
