package sqlshift_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/sqlshift"
)

func TestHiveToPresto(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "several dialect differences in one statement",
			in: "SELECT `user`, score % 10, array(1, 2)\n" +
				"FROM events LATERAL VIEW explode(scores) s AS score\n" +
				"WHERE name RLIKE '^a.*'\n" +
				"DISTRIBUTE BY score SORT BY score",
			want: "SELECT \"user\", mod(score, 10), [1, 2]\n" +
				"FROM events cross join unnest(scores) as s (score)\n" +
				"WHERE regexp_like(name, '^a.*')\n" +
				"order BY score",
		},
		{
			name: "create table with hive types",
			in:   "CREATE TABLE t (`1col` STRING, n DECIMAL(10, 2)) COMMENT 'demo'",
			want: `CREATE TABLE t ("1col" varchar, n DECIMAL(10, 2)) COMMENT 'demo'`,
		},
		{
			name: "already presto",
			in:   "SELECT a FROM t WHERE regexp_like(a, 'x') order BY a",
			want: "SELECT a FROM t WHERE regexp_like(a, 'x') order BY a",
		},
		{
			name: "malformed input comes back untouched",
			in:   "not sql at all",
			want: "not sql at all",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqlshift.HiveToPresto(context.Background(), tt.in))
		})
	}
}

func TestCheck(t *testing.T) {
	require.NoError(t, sqlshift.Check("SELECT a FROM t WHERE a RLIKE 'x'"))
	require.Error(t, sqlshift.Check("SELECT FROM"))
	require.Error(t, sqlshift.Check("SELECT $bad"))
}

func TestStages(t *testing.T) {
	assert.Len(t, sqlshift.Stages(), 1)
}
