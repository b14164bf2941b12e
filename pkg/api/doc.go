// Package api defines the request and response messages of the duet RPC
// services and the codec that carries them.
//
// Money is a decimal.Decimal and travels as a JSON string ("12.50").
// Calendar dates are "YYYY-MM-DD" strings; timestamps are Unix seconds.
package api
