package errors

import "errors"

// ErrDuplicateAttribution is the benign outcome of the referral uniqueness
// check: the joining identity was already attributed to an inviter, now or
// at any point in the past. Callers treat it as a no-op, not a failure.
var ErrDuplicateAttribution = errors.New("joiner already attributed to an inviter")

// ErrLinkClaimLost reports that a concurrent call bound an invite link to the
// same inviter first. The caller should re-read the profile and use the
// stored link.
var ErrLinkClaimLost = errors.New("invite link already claimed by a concurrent call")
