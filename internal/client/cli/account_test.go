package cli

import (
	"bufio"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/client/api"
	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubInt(t *testing.T, n int64) {
	t.Helper()
	orig := getInt
	getInt = func(_ *bufio.Reader, _ string, _ io.Writer) (int64, error) { return n, nil }
	t.Cleanup(func() { getInt = orig })
}

func TestAccount_RequiresLogin(t *testing.T) {
	a, _ := newTestApp(&fakeClient{})
	assert.ErrorIs(t, a.Account(context.Background(), "a@x.com"), api.ErrNotLoggedIn)
	assert.ErrorIs(t, a.AddPoints(context.Background()), api.ErrNotLoggedIn)
}

func TestAccount_DefaultsToOwnEmail(t *testing.T) {
	own := &models.Account{ID: "id-1", Email: "a@x.com", LoyaltyTier: "GOLD", LoyaltyPoints: 5000}
	f := &fakeClient{account: own}
	a, out := newTestApp(f)
	a.account = &models.Account{ID: "id-1", Email: "a@x.com"}

	require.NoError(t, a.Account(context.Background(), ""))
	assert.Equal(t, "a@x.com", f.lookupArg)
	assert.Contains(t, out.String(), "GOLD (5000 points)")
	assert.Equal(t, int64(5000), a.account.LoyaltyPoints)
}

func TestAccount_OtherAccountKeepsSession(t *testing.T) {
	f := &fakeClient{account: &models.Account{ID: "id-2", Email: "b@x.com"}}
	a, out := newTestApp(f)
	a.account = &models.Account{ID: "id-1", Email: "a@x.com"}

	require.NoError(t, a.Account(context.Background(), "b@x.com"))
	assert.Contains(t, out.String(), "<b@x.com>")
	assert.Equal(t, "id-1", a.account.ID)
}

func TestAccount_NotFound(t *testing.T) {
	f := &fakeClient{lookupErr: &api.Error{StatusCode: 404, Code: "NOT_FOUND", Message: "resource not found"}}
	a, _ := newTestApp(f)
	a.account = &models.Account{ID: "id-1", Email: "a@x.com"}

	assert.ErrorIs(t, a.Account(context.Background(), "ghost@x.com"), common.ErrorNotFound)
}

func TestAddPoints_TierUpgrade(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)
	a.account = &models.Account{ID: "id-1", LoyaltyTier: "BRONZE", LoyaltyPoints: 900}
	stubInt(t, 200)

	require.NoError(t, a.AddPoints(context.Background()))
	assert.Equal(t, "id-1", f.pointsID)
	assert.Equal(t, int64(200), f.points)
	assert.Contains(t, out.String(), "Balance: 1100 points, tier SILVER")
	assert.Contains(t, out.String(), "Tier upgraded from BRONZE to SILVER")
}

func TestAddPoints_RejectsNonPositive(t *testing.T) {
	f := &fakeClient{}
	a, _ := newTestApp(f)
	a.account = &models.Account{ID: "id-1"}
	stubInt(t, 0)

	require.ErrorContains(t, a.AddPoints(context.Background()), "positive")
	assert.Empty(t, f.pointsID)
}
