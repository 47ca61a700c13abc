package token

import (
	"strings"
	"testing"
	"time"

	pnet "codeexplainer/internal/platform/net"
	"codeexplainer/internal/platform/testkit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var ada = pnet.Principal{ID: "u-1", Email: "ada@example.com", Name: "Ada"}

func TestIssueVerify_Roundtrip(t *testing.T) {
	clk := testkit.NewClock(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	iss, err := New("s3cret", time.Hour, clk.Now)
	require.NoError(t, err)

	tok, err := iss.Issue(ada)
	require.NoError(t, err)
	got, err := iss.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, ada, got)
}

func TestVerify_Expired(t *testing.T) {
	clk := testkit.NewClock(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	iss, _ := New("s3cret", time.Hour, clk.Now)
	tok, _ := iss.Issue(ada)

	clk.Advance(time.Hour + time.Second)
	_, err := iss.Verify(tok)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_WrongSecretAndGarbage(t *testing.T) {
	a, _ := New("one", 0, nil)
	b, _ := New("two", 0, nil)
	tok, _ := a.Issue(ada)

	_, err := b.Verify(tok)
	require.Error(t, err)
	_, err = a.Verify("not.a.jwt")
	require.Error(t, err)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	iss, _ := New("s3cret", 0, nil)
	c := Claims{UserID: "u", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Verify(none)
	require.Error(t, err)

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte("s3cret"))
	_, err = iss.Verify(hs512)
	require.Error(t, err)
}

func TestVerify_RequiresIDAndExpiry(t *testing.T) {
	iss, _ := New("s3cret", 0, nil)
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u"}).SignedString([]byte("s3cret"))
	_, err := iss.Verify(noExp)
	require.Error(t, err)

	noID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("s3cret"))
	_, err = iss.Verify(noID)
	require.Error(t, err)
}

func TestNew_Guards(t *testing.T) {
	_, err := New("", 0, nil)
	require.Error(t, err)

	iss, _ := New("k", 0, nil)
	require.Equal(t, DefaultTTL, iss.ttl)
	_, err = iss.Issue(pnet.Principal{})
	require.Error(t, err)

	tok, _ := iss.Issue(ada)
	require.Equal(t, 2, strings.Count(tok, "."))
}
