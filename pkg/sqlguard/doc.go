// Package sqlguard decides whether raw SQL text is read-only.
//
// The guard is deliberately not a SQL parser. It splits multi-statement text on
// semicolons that sit outside string literals and comments, strips literals and
// comments from each statement, and looks at the outermost verb of every
// statement under an allow/forbid policy:
//
//	guard := sqlguard.NewGuard(sqlguard.DefaultPolicy())
//	if err := guard.EnsureReadOnly(sql); err != nil {
//		return err // sqlguard.ErrSQLRejected
//	}
//
// Anything the guard cannot classify is rejected. It is a best-effort filter
// in front of query execution, not a sandbox.
package sqlguard
