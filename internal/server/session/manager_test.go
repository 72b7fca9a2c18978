package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/auth/authtest"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer/mailertest"
	"github.com/dmitrijs2005/gophauth/internal/server/tasks"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/dmitrijs2005/gophauth/internal/server/users/userstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineScheduler struct {
	names []string
	errs  []error
}

func (s *inlineScheduler) Go(ctx context.Context, name string, fn tasks.Func) {
	s.names = append(s.names, name)
	s.errs = append(s.errs, fn(ctx))
}

type fixture struct {
	clock     *authtest.Clock
	tokens    *auth.Factory
	repo      *userstest.Memory
	mail      *mailertest.Recorder
	scheduler *inlineScheduler
	hasher    *cryptox.PasswordHasher
	m         *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:     &authtest.Clock{T: time.Unix(1_700_000_000, 0)},
		repo:      userstest.NewMemory(),
		mail:      &mailertest.Recorder{},
		scheduler: &inlineScheduler{},
		hasher:    cryptox.NewPasswordHasher(4),
	}
	f.tokens = authtest.NewFactory(t, f.clock)
	f.m = NewManager(f.tokens, f.repo, f.mail, f.scheduler, f.hasher, logging.Nop{})
	return f
}

func (f *fixture) addUser(activated bool) int64 {
	return f.repo.Add(users.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Activated: activated})
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestDecodeAndVerify_TypeEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.tokens.CreateEmailConfirmToken(5)
	require.NoError(t, err)

	claims, err := f.m.DecodeAndVerify(ctx, tok.Token, auth.TokenTypeEmailConfirm)
	require.NoError(t, err)
	assert.Equal(t, "5", claims.Subject)

	for _, typ := range []auth.TokenType{auth.TokenTypeAccess, auth.TokenTypeRefresh, auth.TokenTypeResetPassword} {
		_, err := f.m.DecodeAndVerify(ctx, tok.Token, typ)
		assert.ErrorIs(t, err, common.ErrInvalidToken, typ)
	}
}

func TestDecodeAndVerify_Expired(t *testing.T) {
	f := newFixture(t)

	tok, err := f.tokens.CreateAccessToken(5, "r")
	require.NoError(t, err)

	f.clock.Advance(f.tokens.TTL().Access + time.Second)
	_, err = f.m.DecodeAndVerify(context.Background(), tok.Token, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestResolveAccessToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.addUser(true)
	coll, err := f.tokens.CreateTokenCollection(id)
	require.NoError(t, err)

	u, err := f.m.ResolveAccessToken(ctx, coll.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "alice", u.Username)

	_, err = f.m.ResolveAccessToken(ctx, coll.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestResolveAccessToken_NotActivated(t *testing.T) {
	f := newFixture(t)

	id := f.addUser(false)
	coll, err := f.tokens.CreateTokenCollection(id)
	require.NoError(t, err)

	_, err = f.m.ResolveAccessToken(context.Background(), coll.AccessToken)
	assert.ErrorIs(t, err, common.ErrUserNotActivated)
	assert.NotErrorIs(t, err, common.ErrInvalidToken)
}

func TestResolveAccessToken_UnknownSubjectIsInvalidToken(t *testing.T) {
	f := newFixture(t)

	coll, err := f.tokens.CreateTokenCollection(999)
	require.NoError(t, err)

	_, err = f.m.ResolveAccessToken(context.Background(), coll.AccessToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestResolveAccessToken_StoreError(t *testing.T) {
	f := newFixture(t)

	coll, err := f.tokens.CreateTokenCollection(1)
	require.NoError(t, err)

	f.repo.Err = errors.New("db down")
	_, err = f.m.ResolveAccessToken(context.Background(), coll.AccessToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshAccessToken_ChainsToRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.repo.Add(users.User{Username: "u7", Email: "u7@example.com"})
	coll, err := f.tokens.CreateTokenCollection(id)
	require.NoError(t, err)

	refresh, err := f.tokens.Codec().Decode(coll.RefreshToken)
	require.NoError(t, err)

	tok, err := f.m.RefreshAccessToken(ctx, coll.RefreshToken)
	require.NoError(t, err)

	access, err := f.tokens.Codec().Decode(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.TokenTypeAccess, access.Type)
	assert.Equal(t, refresh.ID, access.RefreshID)
	assert.Equal(t, refresh.Subject, access.Subject)
}

func TestRefreshAccessToken_ReusableAndSkipsActivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.addUser(false)
	coll, err := f.tokens.CreateTokenCollection(id)
	require.NoError(t, err)

	first, err := f.m.RefreshAccessToken(ctx, coll.RefreshToken)
	require.NoError(t, err)
	second, err := f.m.RefreshAccessToken(ctx, coll.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRefreshAccessToken_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	confirm, err := f.tokens.CreateEmailConfirmToken(1)
	require.NoError(t, err)
	_, err = f.m.RefreshAccessToken(ctx, confirm.Token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	refresh, err := f.tokens.CreateRefreshToken(42)
	require.NoError(t, err)
	_, err = f.m.RefreshAccessToken(ctx, refresh.Token)
	assert.ErrorIs(t, err, common.ErrUserNotExists)

	_, err = f.m.RefreshAccessToken(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestActivateByToken_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.addUser(false)
	tok, err := f.tokens.CreateEmailConfirmToken(id)
	require.NoError(t, err)

	require.NoError(t, f.m.ActivateByToken(ctx, tok.Token))
	require.NoError(t, f.m.ActivateByToken(ctx, tok.Token))

	u, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.Activated)
}

func TestActivateByToken_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.tokens.CreateEmailConfirmToken(77)
	require.NoError(t, err)
	assert.ErrorIs(t, f.m.ActivateByToken(ctx, tok.Token), common.ErrUserNotExists)

	access, err := f.tokens.CreateAccessToken(f.addUser(false), "r")
	require.NoError(t, err)
	assert.ErrorIs(t, f.m.ActivateByToken(ctx, access.Token), common.ErrInvalidToken)
}

func TestIssueConfirmationEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.addUser(false)
	require.NoError(t, f.m.IssueConfirmationEmail(ctx, id, "alice@example.com", "http://localhost:8080"))

	sent := f.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].Recipient)
	assert.Equal(t, SubjectEmailConfirm, sent[0].Subject)
	assert.Equal(t, mailer.TemplateEmailConfirm, sent[0].Template)
	assert.Equal(t, "http://localhost:8080/", sent[0].Data["base_url"])

	link := sent[0].Data["url"].(string)
	assert.True(t, strings.HasPrefix(link, "http://localhost:8080/api/auth/confirm?token="), link)

	require.NoError(t, f.m.ActivateByToken(ctx, tokenFromLink(t, link)))
	u, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, u.Activated)
}

func TestScheduleConfirmationEmail_FailureIsContained(t *testing.T) {
	f := newFixture(t)
	f.mail.Err = errors.New("smtp down")

	f.m.ScheduleConfirmationEmail(context.Background(), 1, "a@b.com", "http://h/")

	require.Equal(t, []string{"confirmation_email"}, f.scheduler.names)
	assert.EqualError(t, f.scheduler.errs[0], "smtp down")
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.addUser(true)
	f.m.SchedulePasswordResetEmail(ctx, id, "alice@example.com", "https://app.example.com/")
	require.NoError(t, f.scheduler.errs[0])

	sent := f.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, SubjectPasswordReset, sent[0].Subject)
	assert.Equal(t, mailer.TemplatePasswordReset, sent[0].Template)

	link := sent[0].Data["url"].(string)
	assert.True(t, strings.HasPrefix(link, "https://app.example.com/reset-password?token="), link)
	token := tokenFromLink(t, link)

	assert.ErrorIs(t, f.m.ResetPasswordByToken(ctx, token, "short"), common.ErrValidation)

	require.NoError(t, f.m.ResetPasswordByToken(ctx, token, "n3wpassword"))
	u, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)

	ok, err := f.hasher.Verify(u.PasswordHash, "n3wpassword")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetPasswordByToken_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.tokens.CreatePasswordResetToken(31)
	require.NoError(t, err)
	assert.ErrorIs(t, f.m.ResetPasswordByToken(ctx, tok.Token, "n3wpassword"), common.ErrUserNotExists)

	confirm, err := f.tokens.CreateEmailConfirmToken(31)
	require.NoError(t, err)
	assert.ErrorIs(t, f.m.ResetPasswordByToken(ctx, confirm.Token, "n3wpassword"), common.ErrInvalidToken)
}

func TestResetPasswordByToken_PasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addUser(true)

	tok, err := f.tokens.CreatePasswordResetToken(id)
	require.NoError(t, err)

	// 37 runes, 73 bytes
	err = f.m.ResetPasswordByToken(ctx, tok.Token, strings.Repeat("пароль", 6)+"1")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.NotErrorIs(t, err, common.ErrorInternal)

	u, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "x", u.PasswordHash)
}

func TestBuildRefreshCookie(t *testing.T) {
	f := newFixture(t)

	c := f.m.BuildRefreshCookie("tok", true)
	assert.Equal(t, common.RefreshTokenCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, int(authtest.DefaultTTLs.Refresh/time.Second), c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	assert.False(t, f.m.BuildRefreshCookie("tok", false).Secure)
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "http://h/", NormalizeBaseURL("http://h"))
	assert.Equal(t, "http://h/", NormalizeBaseURL("http://h/"))
}
