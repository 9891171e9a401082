// Package models defines the core domain records for the marketplace
// settlement engine.
//
// # Records
//
//   - User: a registered account; may own a SellerProfile and a
//     BuyerPaymentProfile
//   - Item: a listed good, priced in integer minor units; sold at most once
//   - SellerProfile: a user's merchant side (gateway account ref, commission)
//   - BuyerPaymentProfile: a user's buyer side (gateway customer ref)
//   - Transaction, Transfer, Commission: the append-only settlement ledger
//
// # Design principles
//
//  1. Amounts are int64 minor units (cents); the only float in the ledger is
//     the gateway-reported exchange rate
//  2. Ledger records are created once, after a successful gateway charge, and
//     never updated or deleted; corrections are new compensating entries
//  3. Relationships use ID strings rather than pointers to avoid circular
//     references
//
// The settlement error taxonomy lives here too so the service, storage, and
// API layers agree on one set of types.
package models
