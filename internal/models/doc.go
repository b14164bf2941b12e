// Package models defines the core domain models for Duet.
//
// # Models
//
//   - User: Registered account, identified by email
//   - PartnerLink: Invite/partnership between two users (pending, accepted, rejected)
//   - Category: Named bucket for transactions, owned by one user
//   - Transaction: Personal or shared expense logged by one user
//   - Settlement: Immutable record that clears a batch of shared transactions
//
// # Design Principles
//
// 1. **IDs over pointers**: Relationships are ID strings, never nested structs
// 2. **Decimal money**: Amounts use decimal.Decimal, never float64
// 3. **Unix timestamps**: CreatedAt/UpdatedAt are Unix seconds, like the storage layer
// 4. **Null as empty**: Optional references (PaidBy, SettlementID) are empty strings when unset
package models
