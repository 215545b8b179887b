// Package objectstore stores profile images in a Cloud Storage bucket and
// resolves them by public URL.
package objectstore
