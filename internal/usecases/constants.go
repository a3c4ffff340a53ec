package usecases

import "time"

// Pricing defaults
const DefaultLeadCostCents int64 = 2000
const MinimumLeadCostCents int64 = 1
const DefaultPlatformFeePercent = 0.10
const DefaultMinimumFeeDollars = 0.0

// Routing
const DefaultPriorityWindow = 24 * time.Hour
const DefaultSweepBatchSize = 100

// Charge idempotency
const ChargeIdempotencyPrefix = "lead-accept:"

// Rejection note limit
const MaxRejectionNoteLength = 1000
