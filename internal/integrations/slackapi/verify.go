package slackapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// replayWindow is how far a request timestamp may drift from the local
// clock before the request is rejected as a possible replay.
const replayWindow = 5 * time.Minute

// Verifier checks Slack request signatures: HMAC-SHA256 over
// "v0:{timestamp}:{body}" keyed by the signing secret, compared in
// constant time against the X-Slack-Signature header.
type Verifier struct {
	secret string
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret, now: time.Now}
}

// Verify reports whether the request is authentically signed and within
// the replay window. Missing or malformed headers fail closed.
func (v *Verifier) Verify(timestamp, signature, body string) bool {
	if v.secret == "" || timestamp == "" || signature == "" {
		return false
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return false
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if age > replayWindow || age < -replayWindow {
		return false
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte("v0:" + timestamp + ":" + body))
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
