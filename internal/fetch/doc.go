// Package fetch issues single HTTP GET requests and decodes their JSON
// bodies into caller-chosen types. An Invoker performs exactly one request
// and reports exactly one Result through its completion callback; every
// failure along the way is folded into one of a closed set of ErrorKinds
// rather than escaping as a panic or a second callback.
package fetch
