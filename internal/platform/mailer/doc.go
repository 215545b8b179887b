// Package mailer delivers password reset links over SMTP.
package mailer
