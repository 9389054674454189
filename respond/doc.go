// Package respond turns a question and its retrieved passages into an answer
// written about the portfolio subject in the third person.
//
// Generator.Generate never fails: greetings get a canned persona greeting,
// model output is cleaned and validated, and anything that goes wrong on the
// way produces a deterministic fallback built from the passages themselves.
package respond
