// Package console holds the domain model of the admin console: administrative
// runs, their outcomes, and the actor audit information attached to them.
package console
