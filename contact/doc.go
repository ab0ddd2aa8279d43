// Package contact validates channel-typed contact addresses before any
// credential or challenge operation accepts them.
//
// A contact is a (value, channel) pair. Email values must parse as a bare
// RFC 5322 address; messaging values must be E.164 phone numbers. Validation
// is purely syntactic — deliverability is the message sender's problem.
package contact
