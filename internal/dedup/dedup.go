// Package dedup decides which candidate work orders are new for a tenant.
// The check is application-level (a read against persisted numbers); two
// concurrent processings of the same email can both pass it and both insert.
// That race is accepted — deployments wanting a hard guarantee add a unique
// (tenant, number) constraint and the repository maps its violation to
// "duplicate, discard".
package dedup

import (
	"context"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/repository"
)

// Resolution partitions candidates into new records and known numbers.
type Resolution struct {
	ToInsert         []*entity.WorkOrderInput
	DuplicateNumbers []string
}

// Resolve checks every candidate's number against the tenant's persisted
// records. Matching is exact, case-sensitive string equality on the number,
// with no normalization; a nil tenant only ever matches other nil-tenant
// records. Candidate order is preserved in both partitions.
func Resolve(ctx context.Context, repo repository.WorkOrderRepository, tenant *string, candidates []*entity.WorkOrderInput) (*Resolution, error) {
	numbers := make([]string, 0, len(candidates))
	for _, c := range candidates {
		numbers = append(numbers, c.WorkOrderNumber)
	}

	existing, err := repo.FindNumbers(ctx, tenant, numbers)
	if err != nil {
		return nil, err
	}

	res := &Resolution{}
	for _, c := range candidates {
		if _, dup := existing[c.WorkOrderNumber]; dup {
			res.DuplicateNumbers = append(res.DuplicateNumbers, c.WorkOrderNumber)
		} else {
			res.ToInsert = append(res.ToInsert, c)
		}
	}
	return res, nil
}

// DeriveStatus maps a processing attempt's counts onto the email's terminal
// status. Three-way, not boolean: "no candidates at all" and "every
// candidate was a duplicate" both create nothing but are different statuses.
func DeriveStatus(candidateCount, insertedCount int) constants.EmailStatus {
	if candidateCount > 0 && insertedCount == 0 {
		return constants.EmailStatusSkippedDuplicate
	}
	return constants.EmailStatusProcessed
}
