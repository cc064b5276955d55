package auth

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/internal/mock"
	"github.com/avykov/multiauth/models"
)

// fakeSession is an in-memory SessionStore recording the order of mutating
// operations, so tests can assert the identifier is regenerated before the
// identity entry is written.
type fakeSession struct {
	entries   map[string][]byte
	ops       []string
	destroyed bool
	regens    int
}

func newFakeSession() *fakeSession {
	return &fakeSession{entries: make(map[string][]byte)}
}

func (s *fakeSession) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *fakeSession) Set(_ context.Context, key string, value []byte) error {
	s.entries[key] = value
	s.ops = append(s.ops, "set:"+key)
	return nil
}

func (s *fakeSession) Delete(_ context.Context, key string) error {
	delete(s.entries, key)
	s.ops = append(s.ops, "delete:"+key)
	return nil
}

func (s *fakeSession) Destroy(_ context.Context) error {
	s.entries = make(map[string][]byte)
	s.destroyed = true
	s.ops = append(s.ops, "destroy")
	return nil
}

func (s *fakeSession) RegenerateID(_ context.Context) error {
	s.regens++
	s.ops = append(s.ops, "regenerate")
	return nil
}

// fakeJar is an in-memory CookieJar recording the TTL of every write.
type fakeJar struct {
	cookies map[string]string
	ttls    map[string]time.Duration
}

func newFakeJar() *fakeJar {
	return &fakeJar{cookies: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (j *fakeJar) Get(name string) (string, bool) {
	value, ok := j.cookies[name]
	return value, ok
}

func (j *fakeJar) Set(name, value string, ttl time.Duration) {
	j.cookies[name] = value
	j.ttls[name] = ttl
}

func (j *fakeJar) Delete(name string) {
	delete(j.cookies, name)
	delete(j.ttls, name)
}

const testTokenLifetime = 14 * 24 * time.Hour

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher("sha1")
	require.NoError(t, err)
	return h
}

func newTestEngine(t *testing.T, users UserStore, tokens TokenStore) (*Engine, *fakeSession, *fakeJar) {
	t.Helper()

	a := NewAuthenticator(
		Config{SessionKey: "auth_user", CookieName: "authautologin", TokenLifetime: testTokenLifetime},
		NewRepositoryStrategy(users, logger.Nop()),
		users,
		tokens,
		newTestHasher(t),
		logger.Nop(),
	)

	sess := newFakeSession()
	jar := newFakeJar()
	return a.Request(sess, jar, "test-agent"), sess, jar
}

func aliceUser(t *testing.T) models.User {
	t.Helper()
	return models.User{
		UserID:       7,
		Username:     "alice",
		Email:        "alice@example.com",
		SiteID:       "site-a",
		PasswordHash: newTestHasher(t).Hash("password"),
		Logins:       3,
		Permissions:  []string{"admin", "login"},
	}
}

func expectRecordLogin(users *mock.MockUserStore) {
	users.EXPECT().
		RecordLogin(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user models.User, now time.Time) (models.User, error) {
			user.Logins++
			user.LastLogin = now
			return user, nil
		})
}

func TestLogin_EmptyPasswordFailsClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, sess, _ := newTestEngine(t, users, tokens)

	// no store expectations: an empty password must not touch anything
	ok, err := engine.Login(context.Background(), "site-a", Unresolved("alice"), "", false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, sess.entries)
	assert.Empty(t, sess.ops)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	alice := aliceUser(t)
	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(alice, nil)
	users.EXPECT().HasPermission(gomock.Any(), int64(7), PermissionLogin).Return(true, nil)
	expectRecordLogin(users)

	ok, err := engine.Login(context.Background(), "site-a", Unresolved("alice"), "password", false)
	require.NoError(t, err)
	assert.True(t, ok)

	user, found, err := engine.GetUser(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(7), user.UserID)
	assert.Equal(t, int64(4), user.Logins, "login counter persists through the session snapshot")
	assert.Equal(t, alice.PasswordHash, user.PasswordHash, "snapshot keeps the hash for CheckPassword")
}

func TestLogin_RegeneratesSessionIDBeforeWritingIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, sess, _ := newTestEngine(t, users, tokens)

	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(aliceUser(t), nil)
	users.EXPECT().HasPermission(gomock.Any(), int64(7), PermissionLogin).Return(true, nil)
	expectRecordLogin(users)

	_, err := engine.Login(context.Background(), "site-a", Unresolved("alice"), "password", false)
	require.NoError(t, err)

	regenIdx := slices.Index(sess.ops, "regenerate")
	setIdx := slices.Index(sess.ops, "set:auth_user")
	require.NotEqual(t, -1, regenIdx)
	require.NotEqual(t, -1, setIdx)
	assert.Less(t, regenIdx, setIdx, "identifier must change before the identity is written")
}

func TestLogin_WrongPasswordLeavesSessionUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, sess, _ := newTestEngine(t, users, tokens)

	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(aliceUser(t), nil)
	users.EXPECT().HasPermission(gomock.Any(), int64(7), PermissionLogin).Return(true, nil)

	ok, err := engine.Login(context.Background(), "site-a", Unresolved("alice"), "wrong", false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, sess.entries)
	assert.Zero(t, sess.regens)
}

func TestLogin_CrossSiteIsolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	// alice exists on site-a only; the site-b lookup reports no user
	users.EXPECT().FindByIdentity(gomock.Any(), "site-b", "alice").Return(models.User{}, ErrUserNotFound)

	ok, err := engine.Login(context.Background(), "site-b", Unresolved("alice"), "password", false)
	require.NoError(t, err)
	assert.False(t, ok, "the same credentials must not work under another site")
}

func TestLogin_RememberIssuesToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, jar := newTestEngine(t, users, tokens)

	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(aliceUser(t), nil)
	users.EXPECT().HasPermission(gomock.Any(), int64(7), PermissionLogin).Return(true, nil)
	expectRecordLogin(users)

	before := time.Now()
	tokens.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, token models.UserToken) (models.UserToken, error) {
			assert.Equal(t, int64(7), token.UserID)
			assert.Equal(t, "site-a", token.SiteID)
			assert.NotEmpty(t, token.Token)
			assert.Equal(t, Fingerprint("test-agent"), token.UserAgent)
			assert.WithinDuration(t, before.Add(testTokenLifetime), token.Expires, 5*time.Second)
			token.TokenID = 11
			return token, nil
		})

	ok, err := engine.Login(context.Background(), "site-a", Unresolved("alice"), "password", true)
	require.NoError(t, err)
	require.True(t, ok)

	value, found := jar.Get("authautologin")
	require.True(t, found)
	assert.NotEmpty(t, value)
	assert.Equal(t, testTokenLifetime, jar.ttls["authautologin"], "fresh tokens get the full lifetime")
}

func TestGetUser_EmptySessionAndNoCookie(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	_, ok, err := engine.GetUser(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoggedIn_PermissionChecks(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(aliceUser(t), nil)
	users.EXPECT().HasPermission(gomock.Any(), int64(7), PermissionLogin).Return(true, nil)
	expectRecordLogin(users)

	_, err := engine.Login(context.Background(), "site-a", Unresolved("alice"), "password", false)
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := engine.LoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.LoggedIn(ctx, "admin", "login")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.LoggedIn(ctx, "admin", "billing")
	require.NoError(t, err)
	assert.False(t, ok, "every named permission is required")
}

func TestForceLogin_SetsForcedMarker(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, sess, _ := newTestEngine(t, users, tokens)

	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(aliceUser(t), nil)
	expectRecordLogin(users)

	require.NoError(t, engine.ForceLogin(context.Background(), "site-a", Unresolved("alice")))

	forced, err := engine.Forced(context.Background())
	require.NoError(t, err)
	assert.True(t, forced)

	ok, err := engine.LoggedIn(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "forced login is a complete login, password never checked")
	assert.GreaterOrEqual(t, sess.regens, 1)
}

func TestLogout_ClearsForcedMarkerAndSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, sess, _ := newTestEngine(t, users, tokens)

	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(aliceUser(t), nil)
	expectRecordLogin(users)
	require.NoError(t, engine.ForceLogin(context.Background(), "site-a", Unresolved("alice")))

	loggedOut, err := engine.Logout(context.Background(), false, false)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	forced, err := engine.Forced(context.Background())
	require.NoError(t, err)
	assert.False(t, forced)
	assert.False(t, sess.destroyed)
	assert.GreaterOrEqual(t, sess.regens, 2, "the cleared session gets a fresh identifier")
}

func TestLogout_DestroySession(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, sess, _ := newTestEngine(t, users, tokens)

	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(aliceUser(t), nil)
	users.EXPECT().HasPermission(gomock.Any(), int64(7), PermissionLogin).Return(true, nil)
	expectRecordLogin(users)
	_, err := engine.Login(context.Background(), "site-a", Unresolved("alice"), "password", false)
	require.NoError(t, err)

	loggedOut, err := engine.Logout(context.Background(), true, false)
	require.NoError(t, err)
	assert.True(t, loggedOut)
	assert.True(t, sess.destroyed)
}

func TestLogout_DeletesTokenRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, jar := newTestEngine(t, users, tokens)

	jar.Set("authautologin", "tok-1", time.Hour)

	row := models.UserToken{TokenID: 11, UserID: 7, SiteID: "site-a", Token: "tok-1"}
	tokens.EXPECT().FindByValue(gomock.Any(), "tok-1").Return(row, nil)
	tokens.EXPECT().Delete(gomock.Any(), "tok-1").Return(nil)

	loggedOut, err := engine.Logout(context.Background(), true, false)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	_, stillThere := jar.Get("authautologin")
	assert.False(t, stillThere)
}

func TestLogout_LogoutAllDeletesEveryToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, jar := newTestEngine(t, users, tokens)

	jar.Set("authautologin", "tok-1", time.Hour)

	row := models.UserToken{TokenID: 11, UserID: 7, SiteID: "site-a", Token: "tok-1"}
	tokens.EXPECT().FindByValue(gomock.Any(), "tok-1").Return(row, nil)
	tokens.EXPECT().DeleteAllForUser(gomock.Any(), int64(7), "site-a").Return(nil)

	loggedOut, err := engine.Logout(context.Background(), true, true)
	require.NoError(t, err)
	assert.True(t, loggedOut)
}

func TestCheckPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(aliceUser(t), nil)
	users.EXPECT().HasPermission(gomock.Any(), int64(7), PermissionLogin).Return(true, nil)
	expectRecordLogin(users)
	_, err := engine.Login(context.Background(), "site-a", Unresolved("alice"), "password", false)
	require.NoError(t, err)

	ok, err := engine.CheckPassword(context.Background(), "password")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.CheckPassword(context.Background(), "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPassword_NobodyLoggedIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	ok, err := engine.CheckPassword(context.Background(), "password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPassword_ReturnsStoredHash(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	alice := aliceUser(t)
	users.EXPECT().FindByIdentity(gomock.Any(), "site-a", "alice").Return(alice, nil)

	hash, err := engine.Password(context.Background(), "site-a", Unresolved("alice"))
	require.NoError(t, err)
	assert.Equal(t, alice.PasswordHash, hash)
}

func TestSetPassword_HashesAtAssignment(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	alice := aliceUser(t)
	users.EXPECT().UpdatePassword(gomock.Any(), int64(7), newTestHasher(t).Hash("new-password")).Return(nil)

	require.NoError(t, engine.SetPassword(context.Background(), alice, "new-password"))
}

func TestHash_MatchesHashPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserStore(ctrl)
	tokens := mock.NewMockTokenStore(ctrl)
	engine, _, _ := newTestEngine(t, users, tokens)

	assert.Equal(t, engine.HashPassword("secret"), engine.Hash("secret"))
}
