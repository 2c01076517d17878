// Package rainclassroom talks to the lecture-capture platform's web API. It
// implements the catalog source interfaces over HTTP and provides the two ways
// of obtaining a session: an existing cookie token or an interactive QR login.
package rainclassroom
