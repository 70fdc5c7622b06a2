// Package pageserver implements a TCP server and client for the page-server
// wire protocol (package protocol): a single backing file exposed as a flat
// byte array over READ/WRITE/FLUSH/DISCARD/STAT requests.
//
// Server accepts one goroutine per connection, in the shape of
// Skipor-memcached's Serve/conn split: an accept loop with exponential
// backoff on temporary Accept errors, handing each connection to its own
// read-dispatch-respond loop. Client is the other end: it dials, frames a
// request, and parses the matching response.
package pageserver
