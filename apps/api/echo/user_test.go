package echoapi_test

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/wazazi/apps/api/echo"
	"github.com/trezcool/wazazi/core/user"
)

func Test_userApi_login(t *testing.T) {
	fx := setup(t)
	login := func(email, pwd, role string) []byte {
		return marshalObj(t, user.Credentials{Email: email, Password: pwd, Role: role})
	}
	invalidCreds := marshalObj(t, httpErr{Error: "invalid credentials"})

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"this field is required","password":"this field is required","role":"this field is required"}`),
		},
		{name: "wrong password", body: login("parent1@family.com", "nope", "Parent"), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "wrong role", body: login("parent1@family.com", "password", "Teacher"), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "unknown email", body: login("ghost@family.com", "password", "Parent"), wantCode: http.StatusBadRequest, wantData: invalidCreds},
		{name: "email and role are case-insensitive", body: login(" Parent1@Family.com ", "password", "parent")},
		{name: "success", body: login("parent1@family.com", "password", "Parent")},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/login"
	}
	fx.run(t, tests)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/login", "", login("teacher1@school.com", "password", "Teacher"))
	fx.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[LoginResponse](t, rec)
	assert.Equal(t, "teacher1", res.User.ID)

	claims, err := ParseToken(fx.conf, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "teacher1", claims.Subject)
	assert.Equal(t, user.RoleTeacher, claims.Role)
}

func Test_userApi_signup(t *testing.T) {
	fx := setup(t)
	signup := func(name, email, pwd string, role user.Role) []byte {
		return marshalObj(t, user.NewUser{Name: name, Email: email, Password: pwd, Role: role})
	}

	tests := []httpTest{
		{
			name: "duplicate email", body: signup("John Again", "PARENT1@family.com", "s3cret!pass", user.RoleParent),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email":"a user with this email already exists"}`),
		},
		{
			name: "admin cannot sign up", body: signup("Eve", "eve@school.com", "s3cret!pass", user.RoleAdmin),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"role":"invalid role"}`),
		},
		{
			name: "unknown role", body: signup("Eve", "eve@school.com", "s3cret!pass", "Principal"),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"role":"invalid role"}`),
		},
		{
			name: "blank fields", body: signup(" ", "", "", user.RoleParent), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"this field is required","name":"this field cannot be blank","password":"this field is required"}`),
		},
		{name: "password like the name", body: signup("Bob", "bob@family.com", "bobby", user.RoleParent), wantCode: http.StatusCreated},
		{name: "success", body: signup("Alice Parent", "alice@family.com", "s3cret!pass", user.RoleParent), wantCode: http.StatusCreated},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/signup"
	}
	fx.run(t, tests)

	usr, err := fx.app.Users.GetByEmail("alice@family.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleParent, usr.Role)

	_, err = fx.app.Users.Authenticate("alice@family.com", "s3cret!pass", "Parent")
	assert.NoError(t, err, "signed up users can log in")
}

func Test_userApi_authed(t *testing.T) {
	fx := setup(t)
	parentToken := fx.token(t, "parent1")
	adminToken := fx.token(t, "admin0")

	teachers := []user.User{fx.user(t, "teacher1"), fx.user(t, "teacher2")}
	parents := []user.User{fx.user(t, "parent1"), fx.user(t, "parent2")}
	others := []user.User{fx.user(t, "parent1"), fx.user(t, "teacher1"), fx.user(t, "teacher2"), fx.user(t, "parent2")}

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "bad token", path: "/v1/users/me", token: "not.a.jwt", wantCode: http.StatusUnauthorized,
			wantData: []byte(`{"error":"invalid or expired jwt"}`),
		},
		{
			name: "query token is ignored", path: "/v1/users/me?token=" + parentToken, wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{name: "me", path: "/v1/users/me", token: parentToken, wantData: marshalObj(t, fx.user(t, "parent1"))},
		{name: "teachers", path: "/v1/users/teachers", token: parentToken, wantData: marshalObj(t, teachers)},
		{name: "parents", path: "/v1/users/parents", token: parentToken, wantData: marshalObj(t, parents)},
		{name: "roles", path: "/v1/roles", wantData: marshalObj(t, user.Roles)},
		{
			name: "list requires admin", path: "/v1/users", token: parentToken, wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "list excludes caller", path: "/v1/users", token: adminToken, wantData: marshalObj(t, others)},
		{name: "logout", method: http.MethodPost, path: "/v1/users/logout", token: parentToken, wantCode: http.StatusNoContent},
		{name: "refresh", method: http.MethodPost, path: "/v1/users/token-refresh", token: parentToken},
	}
	fx.run(t, tests)
}

func Test_userApi_refreshExpired(t *testing.T) {
	fx := setup(t)

	claims := GetUserClaims(fx.conf, fx.user(t, "parent1"), time.Now().Add(-5*time.Hour).Unix())
	token, err := GenerateToken(fx.conf, claims)
	require.NoError(t, err)

	fx.run(t, []httpTest{{
		name: "refresh expired", method: http.MethodPost, path: "/v1/users/token-refresh", token: token,
		wantCode: http.StatusForbidden, wantData: []byte(`{"error":"refresh has expired"}`),
	}})
}

func Test_userApi_delete(t *testing.T) {
	fx := setup(t)
	adminToken := fx.token(t, "admin0")
	parentToken := fx.token(t, "parent1")

	tests := []httpTest{
		{name: "requires admin", method: http.MethodDelete, path: "/v1/users/teacher2", token: parentToken, wantCode: http.StatusForbidden},
		{name: "not self", method: http.MethodDelete, path: "/v1/users/admin0", token: adminToken, wantCode: http.StatusForbidden},
		{name: "unknown", method: http.MethodDelete, path: "/v1/users/ghost", token: adminToken, wantCode: http.StatusNotFound},
		{name: "success", method: http.MethodDelete, path: "/v1/users/parent1", token: adminToken, wantCode: http.StatusNoContent},
		// the deleted user's token is no longer honoured
		{name: "deleted user", path: "/v1/users/me", token: parentToken, wantCode: http.StatusUnauthorized},
	}
	fx.run(t, tests)

	// no cascade: parent1's conversation keeps them as participant
	conv, err := fx.app.Messages.Get("conv1")
	require.NoError(t, err)
	assert.True(t, conv.HasParticipant("parent1"))
}

func Test_userApi_passwordReset(t *testing.T) {
	fx := setup(t)
	successData := marshalObj(t, SuccessResponse{Success: "If the email address supplied is associated with an account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	tests := []httpTest{
		{name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"email":"this field is required"}`)},
		{name: "unknown email", body: marshalObj(t, PasswordResetRequest{Email: "ghost@family.com"}), wantData: successData},
		{name: "known email", body: marshalObj(t, PasswordResetRequest{Email: " Parent1@Family.com "}), wantData: successData},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/password-reset"
	}
	fx.run(t, tests)

	sent := fx.mailer.SentMessages()
	require.Len(t, sent, 1, "unknown emails get no message")
	assert.Equal(t, "parent1@family.com", sent[0].To[0].Address)

	link := regexp.MustCompile(`http://localhost:4200/password-reset/([^/\s]+)/([^/\s]+)`).FindStringSubmatch(sent[0].TextContent)
	require.Len(t, link, 3, sent[0].TextContent)
	uid, token := link[1], link[2]
	assert.Contains(t, sent[0].HTMLContent, "/password-reset/"+uid+"/"+token)

	confirm := func(uid, token, pwd, pwdConfirm string) []byte {
		return marshalObj(t, user.ResetUserPassword{UID: uid, Token: token, Password: pwd, PasswordConfirm: pwdConfirm})
	}
	invalidLink := []byte(`{"token":"invalid or expired password reset link"}`)

	tests = []httpTest{
		{
			name: "required fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"uid":"this field is required","token":"this field is required","password":"this field is required","passwordConfirm":"this field is required"}`),
		},
		{name: "tampered token", body: confirm(uid, token+"x", "n3w!pass", "n3w!pass"), wantCode: http.StatusBadRequest, wantData: invalidLink},
		{name: "other user", body: confirm(user.EncodeUID(fx.user(t, "parent2")), token, "n3w!pass", "n3w!pass"), wantCode: http.StatusBadRequest, wantData: invalidLink},
		{
			name: "success", body: confirm(uid, token, "n3w!pass", "n3w!pass"),
			wantData: marshalObj(t, SuccessResponse{Success: "Password has been reset with the new password."}),
		},
		{name: "link is spent", body: confirm(uid, token, "an0ther!pass", "an0ther!pass"), wantCode: http.StatusBadRequest, wantData: invalidLink},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/password-reset-confirm"
	}
	fx.run(t, tests)

	_, err := fx.app.Users.Authenticate("parent1@family.com", "n3w!pass", "Parent")
	assert.NoError(t, err)
}
