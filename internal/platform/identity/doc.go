// Package identity implements the identity provider client used by the user
// service. It drives the Firebase Admin SDK auth client and translates the
// SDK's error codes into the domain's identity errors.
package identity
