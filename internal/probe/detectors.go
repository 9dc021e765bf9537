package probe

import (
	"context"
	"time"
)

// baitSettle gives content blockers time to collapse the planted element.
const baitSettle = 100 * time.Millisecond

// incognitoQuotaThreshold: private sessions typically report a storage quota
// well under this, around 120 MB on Chromium.
const incognitoQuotaThreshold = 150_000_000

// DetectAdBlock plants a hidden ad-shaped element, waits for blockers to
// react and reports whether the element was collapsed. Biased toward false
// negatives: any failure reads as "no blocker".
func DetectAdBlock(ctx context.Context, env DOMEnv) bool {
	bait, err := env.PlantBait()
	if err != nil {
		return false
	}
	defer bait.Remove()

	select {
	case <-ctx.Done():
		return false
	case <-time.After(baitSettle):
	}

	return bait.Height() == 0
}

// DetectIncognito guesses at private browsing from the storage quota, with
// the legacy filesystem API as a secondary signal on older engines. Best
// effort only, never an error.
func DetectIncognito(ctx context.Context, env StorageEnv) bool {
	if quota, err := env.StorageQuota(ctx); err == nil && quota > 0 && quota < incognitoQuotaThreshold {
		return true
	}

	if restricted, err := env.LegacyFileSystem(ctx); err == nil {
		return restricted
	}

	return false
}
