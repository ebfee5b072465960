package usecase

import (
	"fmt"

	"qbo-backend/internal/ledger/domain"
	"qbo-backend/internal/ledger/repository"
	"qbo-backend/pkg/fuzzy"
)

// minAccountSimilarity is the edit-distance similarity a fuzzy account match needs.
const minAccountSimilarity = 0.8

// accountResolver maps a category to a target account: explicit mapping first,
// then a name match against the mirrored chart of accounts.
type accountResolver struct {
	mapRepo   repository.CategoryMapRepository
	accounts  []*domain.Account
	names     []string
	qualified []string
}

func newAccountResolver(mapRepo repository.CategoryMapRepository, entityRepo repository.EntityRepository) (*accountResolver, error) {
	accounts, err := entityRepo.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	r := &accountResolver{mapRepo: mapRepo, accounts: accounts}
	for _, a := range accounts {
		r.names = append(r.names, a.Name)
		r.qualified = append(r.qualified, a.FullyQualifiedName)
	}
	return r, nil
}

func (r *accountResolver) resolve(category string) (*Ref, error) {
	mapping, err := r.mapRepo.FindByCategory(category)
	if err != nil {
		return nil, fmt.Errorf("failed to load category mapping: %w", err)
	}
	if mapping != nil {
		return &Ref{Value: mapping.AccountID, Name: mapping.AccountName}, nil
	}

	best := fuzzy.BestMatch(category, r.names, minAccountSimilarity)
	if q := fuzzy.BestMatch(category, r.qualified, minAccountSimilarity); q.Kind > best.Kind || (q.Kind == best.Kind && q.Score > best.Score) {
		best = q
	}
	if best.Index < 0 {
		return nil, nil
	}
	a := r.accounts[best.Index]
	return &Ref{Value: a.QboID, Name: a.Name}, nil
}
