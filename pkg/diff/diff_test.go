package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/sqlshift/pkg/diff"
)

func TestTextIdentical(t *testing.T) {
	assert.Empty(t, diff.Text("SELECT 1", "SELECT 1"))
}

func TestTextChangedLine(t *testing.T) {
	d := diff.Text("SELECT a FROM t\nWHERE a RLIKE 'x'", "SELECT a FROM t\nWHERE regexp_like(a, 'x')")
	assert.Contains(t, d, "-WHERE a RLIKE 'x'")
	assert.Contains(t, d, "+WHERE regexp_like(a, 'x')")
	assert.NotContains(t, d, "-SELECT a FROM t")
}
