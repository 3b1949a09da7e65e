// Package models defines the core domain models for feeledger.
//
// # Persisted Models
//
//   - Student: a dependent billed monthly, grouped under a paying party
//   - PaymentRecord: one payment toward one student's month
//
// Families are not persisted. They are derived from students on every
// ledger refresh (see package calculator) and have no lifecycle of their own.
//
// # Design Principles
//
// 1. **Money is decimal**: amounts use shopspring/decimal, never float64
// 2. **Avoid circular references**: relationships use ID strings, not pointers
// 3. **Month labels are strings**: "Febrero 2025"; ordering belongs to package calendar
// 4. **Soft lifecycle**: students are deactivated, never deleted
package models
