package planner

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/dialectic/internal/job"
)

// Fingerprint computes a blake3 digest of a child job set. The digest does
// not depend on payload order, so two plans of the same input compare equal.
func Fingerprint(payloads []job.ExecuteJobPayload) (string, error) {
	digests := make([]string, 0, len(payloads))
	for i, p := range payloads {
		// encoding/json emits struct fields in declaration order and map keys sorted
		data, err := json.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("marshal payload %d: %w", i, err)
		}
		sum := blake3.Sum256(data)
		digests = append(digests, fmt.Sprintf("%x", sum[:]))
	}
	slices.Sort(digests)

	hasher := blake3.New()
	for _, d := range digests {
		if _, err := hasher.Write([]byte(d)); err != nil {
			return "", fmt.Errorf("hash plan: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
