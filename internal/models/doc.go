// Package models defines the core domain models for Karkkilista.
//
// # Collections
//
// Data is organised like a small document store:
//   - users/{ownerId}: the public Owner profile (display name). Every
//     registered account owns exactly one list, identified by the account id.
//   - users/{ownerId}/items/{itemId}: the Items on that owner's list.
//
// Credentials live in a separate Account record that is never exposed through
// list reads.
//
// # Design Principles
//
//  1. Owner id == account id: the only authorization rule is that a session
//     identity may mutate the list whose owner id equals its own id.
//  2. Items are append/remove only; there is no update path.
//  3. Item prices are stored as formatted text (see package money) so that
//     stored data keeps the "7,50€" convention byte for byte.
package models
