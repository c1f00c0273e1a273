package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivatePredicate(t *testing.T) {
	sc := Private("user-1")

	cond, args := sc.Predicate()
	assert.Equal(t, "record_by_user_id = ? AND record_by_team_id IS NULL", cond)
	assert.Equal(t, []interface{}{"user-1"}, args)
	assert.False(t, sc.IsTeam())
	assert.Nil(t, sc.TeamIDPtr())
}

func TestTeamPredicate(t *testing.T) {
	sc := Team("user-1", "team-9")

	cond, args := sc.Predicate()
	assert.Equal(t, "record_by_team_id = ?", cond)
	assert.Equal(t, []interface{}{"team-9"}, args)
	assert.True(t, sc.IsTeam())

	ptr := sc.TeamIDPtr()
	require.NotNil(t, ptr)
	assert.Equal(t, "team-9", *ptr)
}

// The stamp pointer must not alias the scope value.
func TestTeamIDPtrIsCopy(t *testing.T) {
	sc := Team("user-1", "team-9")
	a := sc.TeamIDPtr()
	b := sc.TeamIDPtr()
	assert.NotSame(t, a, b)
}

func TestCacheKeySeparatesDomains(t *testing.T) {
	assert.Equal(t, "user:user-1", Private("user-1").CacheKey())
	assert.Equal(t, "team:team-9", Team("user-1", "team-9").CacheKey())
	assert.NotEqual(t, Private("x").CacheKey(), Team("y", "x").CacheKey())
}
