package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/trezcool/wazazi/apps/api/echo"
	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/core/portal"
	"github.com/trezcool/wazazi/core/user"
	emailsvc "github.com/trezcool/wazazi/services/email"
	"github.com/trezcool/wazazi/services/notify"
	"github.com/trezcool/wazazi/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type fixture struct {
	conf   *core.Config
	app    *portal.App
	server *Server
	hub    *notify.Hub
	mailer *emailsvc.ConsoleService
}

// setup serves a seeded in-memory portal.
func setup(t *testing.T) fixture {
	conf := testutil.Config()
	validate, translator := testutil.NewValidator()
	app := testutil.NewAppWith(t, validate, true)

	core.ParseEmailTemplates(testutil.NopLogger{}, true)
	mailer := emailsvc.NewConsoleServiceMock(conf, testutil.NopLogger{})

	hub := notify.NewHub(testutil.NopLogger{})
	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testutil.NopLogger{},
		App:        app,
		Hub:        hub,
		Mailer:     mailer,
		Validate:   validate,
		Translator: translator,
	})
	t.Cleanup(func() { _ = server.Close() })
	return fixture{conf: conf, app: app, server: server, hub: hub, mailer: mailer}
}

func (fx fixture) user(t *testing.T, id string) user.User {
	usr, err := fx.app.Users.GetByID(id)
	require.NoError(t, err)
	return usr
}

func (fx fixture) token(t *testing.T, id string) string {
	token, err := GenerateToken(fx.conf, GetUserClaims(fx.conf, fx.user(t, id)))
	require.NoError(t, err)
	return token
}

func (fx fixture) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			fx.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData compares the body only when the test expects one.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
