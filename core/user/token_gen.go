package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	tokenSalt = []byte("wazazi.core.user.token_gen")
	nowFunc   = time.Now // mockable

	// errors
	ErrInvalidResetToken = errors.New("invalid or expired password reset link")
	errInvalidToken      = errors.New("invalid token")
	errTokenExpired      = errors.New("token expired")
)

// ResetTokens makes and checks password reset tokens. A token is bound to the account's
// password hash, so it stops working once the password changes.
type ResetTokens struct {
	SecretKey string
	Timeout   time.Duration
}

// EncodeUID base64 encodes the user's ID for reset links.
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

func decodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

// Make generates a password reset token for acc.
func (rt ResetTokens) Make(acc Account) string {
	return rt.makeWithTimestamp(acc, numDaysSince2001(nowFunc()))
}

// Verify checks that token was made for acc and has not expired.
func (rt ResetTokens) Verify(acc Account, token string) error {
	tsB32, _, ok := strings.Cut(token, "-")
	if !ok {
		return errInvalidToken
	}
	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(tsB32)
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	if subtle.ConstantTimeCompare([]byte(rt.makeWithTimestamp(acc, ts)), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if numDaysSince2001(nowFunc())-ts > int(rt.Timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (rt ResetTokens) makeWithTimestamp(acc Account, ts int) string {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	return tsB32 + "-" + rt.sign(hashValue(acc, ts))
}

func (rt ResetTokens) sign(val []byte) string {
	key := sha256.Sum256(append(tokenSalt[:len(tokenSalt):len(tokenSalt)], rt.SecretKey...))
	h := hmac.New(sha256.New, key[:])
	_, _ = h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func hashValue(acc Account, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(acc.ID)
	val.Write(acc.PasswordHash)
	val.WriteString(acc.Email)
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
