package referral

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"Minex/internal/models"
)

// mapSource - хранилище пользователей в памяти для тестов обхода дерева.
type mapSource map[string]models.User

func (m mapSource) GetUserByID(userID string) (models.User, error) {
	user, ok := m[userID]
	if !ok {
		return models.User{}, fmt.Errorf("пользователь %s не найден", userID)
	}
	return user, nil
}

func refBy(id string) sql.NullString {
	return sql.NullString{String: id, Valid: true}
}

// buildChain создает цепочку root <- u1 <- u2 <- ... длиной n.
func buildChain(n int) mapSource {
	src := mapSource{}
	src["root"] = models.User{UserID: "root", DirectReferrals: []string{"u1"}}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("u%d", i)
		parent := "root"
		if i > 1 {
			parent = fmt.Sprintf("u%d", i-1)
		}
		user := models.User{UserID: id, ReferredBy: refBy(parent)}
		if i < n {
			user.DirectReferrals = []string{fmt.Sprintf("u%d", i+1)}
		}
		src[id] = user
	}
	return src
}

func TestTeamByDepthChain(t *testing.T) {
	src := buildChain(8)

	levels, err := TeamByDepth(src, "root")
	require.NoError(t, err)

	// Цепочка из восьми потомков: по одному на глубинах 1-6, хвост за
	// пределами максимальной глубины не учитывается.
	for d := 0; d < models.MaxReferralDepth; d++ {
		require.Equal(t, []string{fmt.Sprintf("u%d", d+1)}, levels[d], "глубина %d", d+1)
	}
}

func TestTeamByDepthFanOut(t *testing.T) {
	src := mapSource{
		"root": {UserID: "root", DirectReferrals: []string{"a", "b"}},
		"a":    {UserID: "a", ReferredBy: refBy("root"), DirectReferrals: []string{"a1", "a2"}},
		"b":    {UserID: "b", ReferredBy: refBy("root")},
		"a1":   {UserID: "a1", ReferredBy: refBy("a")},
		"a2":   {UserID: "a2", ReferredBy: refBy("a")},
	}

	counts, err := TeamCounts(src, "root")
	require.NoError(t, err)
	require.Equal(t, [models.MaxReferralDepth]int{2, 2, 0, 0, 0, 0}, counts)
}

func TestTeamByDepthMissingRoot(t *testing.T) {
	src := mapSource{}
	_, err := TeamByDepth(src, "ghost")
	require.Error(t, err)
}

func TestTeamByDepthBrokenLink(t *testing.T) {
	// Узел "b" отсутствует в хранилище: его поддерево пропускается, но
	// остальная часть глубины обходится.
	src := mapSource{
		"root": {UserID: "root", DirectReferrals: []string{"a", "b"}},
		"a":    {UserID: "a", ReferredBy: refBy("root"), DirectReferrals: []string{"a1"}},
		"a1":   {UserID: "a1", ReferredBy: refBy("a")},
	}

	levels, err := TeamByDepth(src, "root")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, levels[0])
	require.Equal(t, []string{"a1"}, levels[1])
}

func TestUplineChain(t *testing.T) {
	src := buildChain(4)

	chain, err := Upline(src, "u4", models.MaxReferralDepth)
	require.NoError(t, err)
	require.Len(t, chain, 4)
	require.Equal(t, "u3", chain[0].UserID)
	require.Equal(t, "u2", chain[1].UserID)
	require.Equal(t, "u1", chain[2].UserID)
	require.Equal(t, "root", chain[3].UserID)
}

func TestUplineStopsAtMaxDepth(t *testing.T) {
	src := buildChain(8)

	chain, err := Upline(src, "u8", models.MaxReferralDepth)
	require.NoError(t, err)
	require.Len(t, chain, models.MaxReferralDepth)
	require.Equal(t, "u7", chain[0].UserID)
	require.Equal(t, "u2", chain[5].UserID)
}

func TestUplineBrokenLink(t *testing.T) {
	src := mapSource{
		"u2": {UserID: "u2", ReferredBy: refBy("u1")},
		"u1": {UserID: "u1", ReferredBy: refBy("ghost")},
	}

	chain, err := Upline(src, "u2", models.MaxReferralDepth)
	require.NoError(t, err)
	// Цепочка обрывается на отсутствующем пригласившем.
	require.Len(t, chain, 1)
	require.Equal(t, "u1", chain[0].UserID)
}
