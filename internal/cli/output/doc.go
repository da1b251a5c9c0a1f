// Package output renders statmesh-cli results.
//
// Four formats are supported: raw passes the server's body through,
// json and yaml re-encode the decoded result, and table lays it out in
// aligned columns for values that know how to describe themselves as a
// Table.
package output
