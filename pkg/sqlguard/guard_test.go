package sqlguard

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsReadOnly(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want bool
	}{
		// allowed
		{"select", "SELECT 1", true},
		{"lowercase select", "select 1", true},
		{"cte select", "WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"recursive cte", "WITH RECURSIVE t(n) AS (SELECT 1) SELECT n FROM t", true},
		{"show", "SHOW TABLES", true},
		{"show create", "SHOW CREATE TABLE t", true},
		{"describe", "DESCRIBE t", true},
		{"explain", "EXPLAIN SELECT 1", true},
		{"explain analyze names the outer verb only", "EXPLAIN ANALYZE DELETE FROM t", true},
		{"values", "VALUES (1), (2)", true},
		{"use", "USE hive.default", true},
		{"set session", "SET SESSION foo = 'bar'", true},
		{"reset session", "RESET SESSION foo", true},
		{"doubled quote", "SELECT 'a''b'", true},
		{"keyword in string", "SELECT 'DELETE' AS word", true},
		{"keyword in line comment", "-- DROP TABLE\nSELECT 1", true},
		{"keyword in block comment", "/* DROP TABLE t; */ SELECT 1", true},
		{"forbidden word as identifier", "SELECT comment FROM t", true},
		{"forbidden word in subquery", "SELECT * FROM (SELECT 1 AS delete) x", true},
		{"phrase inside literal", "SELECT * FROM t WHERE c = 'SET ROLE admin'", true},
		{"phrase inside comment", "SELECT 1 /* SET ROLE admin */", true},
		{"multiple reads", "SELECT 1; SHOW TABLES; SET SESSION a = 1", true},
		{"empty", "", true},
		{"only separators", ";;", true},

		// rejected
		{"set role", "SET ROLE admin", false},
		{"reset role", "RESET ROLE", false},
		{"bare set", "SET", false},
		{"set other", "SET TIME ZONE 'UTC'", false},
		{"reset unknown target", "RESET foo", false},
		{"insert", "INSERT INTO t VALUES (1)", false},
		{"update", "UPDATE t SET x = 1", false},
		{"delete", "DELETE FROM t", false},
		{"merge", "MERGE INTO t USING s ON t.id = s.id WHEN MATCHED THEN DELETE", false},
		{"create", "CREATE TABLE t (id INT)", false},
		{"drop", "DROP TABLE t", false},
		{"alter", "ALTER TABLE t RENAME TO u", false},
		{"truncate", "TRUNCATE TABLE t", false},
		{"grant", "GRANT SELECT ON t TO u", false},
		{"revoke", "REVOKE SELECT ON t FROM u", false},
		{"call", "CALL system.runtime.kill_query('q')", false},
		{"comment on", "COMMENT ON TABLE t IS 'x'", false},
		{"read then write", "SELECT 1; DELETE FROM t", false},
		{"write then read", "DROP TABLE t; SELECT 1", false},
		{"cte insert", "WITH t AS (SELECT 1) INSERT INTO x SELECT * FROM t", false},
		{"lowercase insert", "insert into t values (1)", false},
		{"no keyword", "foo bar", false},
		{"only parenthesised", "(SELECT 1)", false},
		{"only comment", "-- nothing here", false},
		{"trailing comment statement", "SELECT 1; -- done", false},
		{"phrase after allowed verb", "SELECT 1 SET ROLE admin", false},
		{"unterminated literal hides nothing", "SELECT 1; DROP TABLE 'x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReadOnly(tt.sql))
		})
	}
}

func TestEnsureReadOnly(t *testing.T) {
	require.NoError(t, EnsureReadOnly("SELECT 1"))

	err := EnsureReadOnly("DROP TABLE t")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSQLRejected))
	assert.Equal(t,
		"Query rejected: read-only mode blocks DDL/DML. Use --allow-write to override.",
		err.Error())
}

func TestGuard_Analyze(t *testing.T) {
	g := NewGuard(nil)

	report := g.Analyze("SELECT 1; DELETE FROM t; SET ROLE admin; RESET SESSION x; bogus")
	require.Len(t, report.Verdicts, 5)

	tests := []struct {
		statement string
		allowed   bool
		first     string
		second    string
		reason    string
	}{
		{"SELECT 1", true, "SELECT", "", "allowed statement SELECT"},
		{"DELETE FROM t", false, "DELETE", "", "forbidden keyword DELETE"},
		{"SET ROLE admin", false, "SET", "ROLE", `forbidden phrase "SET ROLE"`},
		{"RESET SESSION x", true, "RESET", "SESSION", "session command RESET SESSION"},
		{"bogus", false, "", "", "no recognizable leading keyword"},
	}
	for i, tt := range tests {
		v := report.Verdicts[i]
		assert.Equal(t, tt.statement, v.Statement)
		assert.Equal(t, tt.allowed, v.Allowed, tt.statement)
		assert.Equal(t, tt.first, v.Classification.First, tt.statement)
		assert.Equal(t, tt.second, v.Classification.Second, tt.statement)
		assert.Equal(t, tt.reason, v.Reason, tt.statement)
	}

	assert.False(t, report.ReadOnly())
	assert.Len(t, report.Rejected(), 3)
}

func TestGuard_AnalyzeEmpty(t *testing.T) {
	report := NewGuard(nil).Analyze("  ;  ")
	assert.Empty(t, report.Verdicts)
	assert.True(t, report.ReadOnly())
	assert.Empty(t, report.Rejected())
}

func TestGuard_UnsupportedSessionTarget(t *testing.T) {
	report := NewGuard(nil).Analyze("SET TIME ZONE 'UTC'")
	require.Len(t, report.Verdicts, 1)
	assert.Equal(t, "unsupported command SET TIME", report.Verdicts[0].Reason)
}

func TestGuard_CustomPolicy(t *testing.T) {
	p, err := NewPolicy([]string{"select"}, []string{"delete"}, []string{"kill me"})
	require.NoError(t, err)
	g := NewGuard(p)

	assert.Same(t, p, g.Policy())
	assert.True(t, g.IsReadOnly("select 1"))
	assert.False(t, g.IsReadOnly("SHOW TABLES"), "keywords outside the policy are unrecognised")
	assert.False(t, g.IsReadOnly("DELETE FROM t"))
	assert.False(t, g.IsReadOnly("SELECT 1 KILL ME"))
	assert.True(t, g.IsReadOnly("SET SESSION a = 1"), "session commands are built in")
	assert.False(t, g.IsReadOnly("INSERT INTO t VALUES (1)"), "unlisted write verbs still fail closed")
}

func TestGuard_ConcurrentUse(t *testing.T) {
	g := NewGuard(nil)
	queries := map[string]bool{
		"SELECT 1":                      true,
		"DROP TABLE t":                  false,
		"SET SESSION a = 'b'; SELECT 2": true,
		"SELECT 1; DELETE FROM t":       false,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for sql, want := range queries {
			wg.Add(1)
			go func(sql string, want bool) {
				defer wg.Done()
				assert.Equal(t, want, g.IsReadOnly(sql), sql)
			}(sql, want)
		}
	}
	wg.Wait()
}
