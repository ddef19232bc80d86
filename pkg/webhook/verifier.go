package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/skynet2/finance-reconciler/pkg/common"
)

const (
	SignatureHeader  = "X-Signature"
	DefaultTolerance = 5 * time.Minute
)

// Verifier checks `t=<unix seconds>,v1=<hex hmac-sha256>` signatures over
// "<t>.<body>". Several secrets may be active while one is rotated.
type Verifier struct {
	secrets   map[string][]string
	tolerance time.Duration
	clock     func() time.Time
}

func NewVerifier(secrets map[string][]string, tolerance time.Duration, clock func() time.Time) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	if clock == nil {
		clock = time.Now
	}

	return &Verifier{
		secrets:   secrets,
		tolerance: tolerance,
		clock:     clock,
	}
}

func (v *Verifier) Verify(provider string, body []byte, header string) error {
	secrets := v.secrets[provider]
	if len(secrets) == 0 {
		return errors.Wrapf(common.ErrSignatureInvalid, "no secret configured for %s", provider)
	}

	ts, signatures, err := parseHeader(header)
	if err != nil {
		return err
	}

	age := v.clock().Sub(time.Unix(ts, 0))
	if age > v.tolerance || age < -v.tolerance {
		return errors.Wrap(common.ErrSignatureInvalid, "signature timestamp outside tolerance")
	}

	for _, secret := range secrets {
		expected := []byte(Sign(secret, ts, body))

		for _, sig := range signatures {
			if hmac.Equal(expected, []byte(sig)) {
				return nil
			}
		}
	}

	return errors.Wrap(common.ErrSignatureInvalid, "signature mismatch")
}

// Sign returns the hex digest a sender puts into v1.
func Sign(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

func SignatureValue(secret string, ts int64, body []byte) string {
	return "t=" + strconv.FormatInt(ts, 10) + ",v1=" + Sign(secret, ts, body)
}

func parseHeader(header string) (int64, []string, error) {
	var (
		ts         int64
		signatures []string
	)

	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}

		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, errors.Wrap(common.ErrSignatureInvalid, "bad signature timestamp")
			}

			ts = parsed
		case "v1":
			signatures = append(signatures, strings.ToLower(value))
		}
	}

	if ts == 0 || len(signatures) == 0 {
		return 0, nil, errors.Wrap(common.ErrSignatureInvalid, "malformed signature header")
	}

	return ts, signatures, nil
}
