package dedup

import (
	"crypto/sha512"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/skynet2/finance-reconciler/pkg/common"
	"github.com/skynet2/finance-reconciler/pkg/database"
)

const separator = "|"

// Key derives the stored dedup key from provider stable identifiers only.
// Mutable values such as balances must never be passed here.
func Key(
	source database.SourceType,
	parts ...string,
) (string, error) {
	if len(parts) == 0 {
		return "", errors.Wrap(common.ErrMalformedRecord, "no dedup key components")
	}

	normalized := make([]string, 0, len(parts)+1)
	normalized = append(normalized, string(source))

	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return "", errors.Wrapf(common.ErrMalformedRecord, "dedup key component %d is empty", i)
		}

		normalized = append(normalized, part)
	}

	return HashKey(strings.Join(normalized, separator)), nil
}

func HashKey(bv string) string {
	shaImpl := sha512.New()
	shaImpl.Write([]byte(bv))

	return fmt.Sprintf("%x", shaImpl.Sum(nil))
}
