// Package models defines the core domain models for Kontrib.
//
// # Model Overview
//
//   - Identity: a registered person, verified by phone number
//   - Device: a long-lived credential binding one browser/device to an Identity
//   - Group: a savings/fundraising circle with exactly one admin
//   - Membership: the Identity<->Group relation with an accrued contribution total
//   - Project: a collection target inside a group with a running collected total
//   - Contribution: a submitted payment claim moving through pending -> confirmed/rejected
//   - Notification: a targeted record produced on every lifecycle transition
//
// # Design Principles
//
// 1. **Relation-based authority**: the group admin is Group.AdminID, never the
// informational Identity.Role flag.
//
// 2. **Incremental aggregates**: Project.CollectedAmount and
// Membership.ContributedAmount are maintained by the confirm transition only,
// never re-derived by summation at read time.
//
// 3. **Exact money**: all amounts are decimal (money.Amount), no binary floats.
//
// 4. **Avoid circular references**: models link by ID strings, not pointers.
package models
