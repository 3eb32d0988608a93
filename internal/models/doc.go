// Package models defines the core domain models for BudgetBuddy.
//
// # Ledger Models
//
// The peer debt ledger is built from four types:
//   - Participant: self or a friend that can take part in a shared expense
//   - SharedExpense: one group spend event, paid by one participant
//   - LedgerEntry: the single signed balance between self and one counterparty
//   - SettlementEvent: an immutable record of a settle action
//
// Every ledger model is scoped to one signed-in user ("self"). Self is always
// represented by the participant ID SelfID.
//
// # Personal Finance Models
//
//   - User: registered account
//   - Expense: a personal expense with a category
//   - SavingsGoal: a savings pot with a target
//   - Onboarding: goals and UPI app picked during onboarding
//
// # Design Principles
//
//  1. Money is always an int64 count of minor currency units (paise for INR).
//     Conversion to display strings happens only at the presentation boundary.
//  2. A relationship with a counterparty is one signed amount, never a pair of
//     "owes"/"owed" rows.
//  3. Relationships use ID strings instead of pointers.
//  4. Timestamps are Unix seconds.
package models
