// Package transport carries text messages between two endpoints.
//
// A Channel is bidirectional, order-preserving and message-delimited. The key
// exchange and the relay only ever see Send and Receive; framing, buffering
// and the byte stream underneath live here.
package transport
