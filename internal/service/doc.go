// Package service orchestrates the user aggregate across the identity
// provider, the profile store and the image store.
//
// None of the three systems share a transaction. Every mutating workflow
// therefore orders its steps so that a failure part way through leaves the
// least harmful state behind, reports the step that failed, and emits an
// event when an operator has to reconcile what was left. Nothing is rolled
// back automatically.
package service
